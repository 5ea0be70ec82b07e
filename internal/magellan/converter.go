package magellan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/character"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/convert"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
)

// JoinRPG field and group ids of project 329.
const (
	nameFieldID       = 2786
	planetFieldID     = 2787
	passwordFieldID   = 3630
	professionFieldID = 3438

	defaultPassword = "0000"
)

const (
	groupTopManager = 9906
	groupManager    = 8491
	groupSecurity   = 9907
	groupIdeologist = 8556
)

var companyGroups = []struct {
	group   int
	company Company
}{
	{8492, CompanyGD},
	{8495, CompanyPre},
	{8497, CompanyKKG},
	{8498, CompanyMat},
	{8499, CompanyMst},
}

type specifics struct{}

func (specifics) NameFieldID() int { return nameFieldID }

func (specifics) BuildSpecifics(base model.Base, p *character.Parser, problems *convert.Problems) (model.Model, model.Credentials, error) {
	access := companyAccess(p)
	h := &HumanModel{
		Base:        base,
		ProfileType: ProfileHuman,
		SpaceSuit:   newSpaceSuit(),
	}
	for _, a := range access {
		if a.IsTopManager {
			h.IsTopManager = true
		}
	}

	planet := p.StringValue(planetFieldID, false)
	if planet == "" {
		problems.Add("Missing required field homeworld (%d)", planetFieldID)
	} else {
		systems, err := genome(p.StringValue(planetFieldID, true))
		if err != nil {
			return nil, nil, err
		}
		h.Planet = planet
		h.Systems = systems
	}

	password := p.StringValue(passwordFieldID, false)
	if password == "" {
		password = defaultPassword
	}
	acc := &Account{
		Account: model.Account{
			ID:       h.ID,
			Login:    h.Login,
			Password: password,
		},
		Professions:   professions(p),
		CompanyAccess: access,
		Jobs: Jobs{
			TradeUnion:   tradeUnions(p),
			CompanyBonus: companies(p),
		},
	}
	return h, acc, nil
}

// genome parses the homeworld's programmatic value: at least seven
// space-separated nucleotides, extra ones are ignored.
func genome(value string) ([]System, error) {
	parts := strings.Fields(value)
	if len(parts) > NumberOfSystems {
		parts = parts[:NumberOfSystems]
	}
	nucleotides := make([]int, 0, len(parts))
	for _, s := range parts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("incorrect nucleotide %q", s)
		}
		nucleotides = append(nucleotides, n)
	}
	return SystemsFromNucleotides(nucleotides)
}

func companies(p *character.Parser) []Company {
	out := []Company{}
	for _, cg := range companyGroups {
		if p.PartOfGroup(cg.group) {
			out = append(out, cg.company)
		}
	}
	return out
}

func companyAccess(p *character.Parser) []CompanyAccess {
	top := p.PartOfGroup(groupTopManager)
	out := []CompanyAccess{}
	for _, c := range companies(p) {
		out = append(out, CompanyAccess{CompanyName: c, IsTopManager: top})
	}
	return out
}

func tradeUnions(p *character.Parser) TradeUnions {
	either := func(group, variant int) bool {
		return p.PartOfGroup(group) || p.HasFieldValue(professionFieldID, variant)
	}
	return TradeUnions{
		IsBiologist:      either(8489, 3448),
		IsCommunications: either(8486, 3445),
		IsEngineer:       either(8488, 3447),
		IsNavigator:      either(8446, 3444),
		IsPilot:          either(8445, 3443),
		IsPlanetolog:     either(3449, 3449),
		IsSupercargo:     either(8487, 3446),
	}
}

func professions(p *character.Parser) Professions {
	return Professions{
		TradeUnions:  tradeUnions(p),
		IsIdelogist:  p.PartOfGroup(groupIdeologist),
		IsJournalist: p.HasFieldValue(professionFieldID, 3450),
		IsSecurity:   p.PartOfGroup(groupSecurity),
		IsTopManager: p.PartOfGroup(groupTopManager),
		IsManager:    p.PartOfGroup(groupManager),
	}
}
