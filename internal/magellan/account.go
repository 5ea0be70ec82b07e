package magellan

import "github.com/ovaphlow/pitchfork/service-join-import/internal/model"

type Company string

const (
	CompanyGD  Company = "gd"
	CompanyPre Company = "pre"
	CompanyKKG Company = "kkg"
	CompanyMat Company = "mat"
	CompanyMst Company = "mst"
)

type CompanyAccess struct {
	CompanyName  Company `json:"companyName"`
	IsTopManager bool    `json:"isTopManager"`
}

type TradeUnions struct {
	IsBiologist      bool `json:"isBiologist"`
	IsCommunications bool `json:"isCommunications"`
	IsEngineer       bool `json:"isEngineer"`
	IsNavigator      bool `json:"isNavigator"`
	IsPilot          bool `json:"isPilot"`
	IsPlanetolog     bool `json:"isPlanetolog"`
	IsSupercargo     bool `json:"isSupercargo"`
}

type Professions struct {
	TradeUnions
	IsIdelogist  bool `json:"isIdelogist"`
	IsJournalist bool `json:"isJournalist"`
	IsSecurity   bool `json:"isSecurity"`
	IsTopManager bool `json:"isTopManager"`
	IsManager    bool `json:"isManager"`
}

type Jobs struct {
	TradeUnion   TradeUnions `json:"tradeUnion"`
	CompanyBonus []Company   `json:"companyBonus"`
}

// Account adds Magellan entitlements to the credential record.
type Account struct {
	model.Account
	Professions   Professions     `json:"professions"`
	CompanyAccess []CompanyAccess `json:"companyAccess"`
	Jobs          Jobs            `json:"jobs"`
}
