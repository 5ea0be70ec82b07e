// Package magellan is the Magellan 2018 game: its model variants, the
// JoinRPG field mapping and its NPC generators.
package magellan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
)

// NumberOfSystems is the length of every genome.
const NumberOfSystems = 7

type ProfileType string

const (
	ProfileHuman     ProfileType = "human"
	ProfileMice      ProfileType = "mice"
	ProfileXenomorph ProfileType = "xenomorph"
)

var ErrUnknownProfile = errors.New("magellan: unknown profile type")

type System struct {
	Value        int   `json:"value"`
	Nucleotide   int   `json:"nucleotide"`
	LastModified int64 `json:"lastModified"`
	Present      bool  `json:"present"`
}

type SpaceSuit struct {
	On                 bool     `json:"on"`
	OxygenCapacity     int      `json:"oxygenCapacity"`
	TimestampWhenPutOn int64    `json:"timestampWhenPutOn"`
	Diseases           []string `json:"diseases"`
}

func newSpaceSuit() SpaceSuit {
	return SpaceSuit{Diseases: []string{}}
}

// Model is one of HumanModel, MiceModel or XenomorphModel.
type Model interface {
	model.Model
	Profile() ProfileType
	isMagellanModel()
}

type HumanModel struct {
	model.Base
	ProfileType  ProfileType `json:"profileType"`
	Planet       string      `json:"planet,omitempty"`
	Systems      []System    `json:"systems,omitempty"`
	SpaceSuit    SpaceSuit   `json:"spaceSuit"`
	IsTopManager bool        `json:"isTopManager"`
}

type MiceModel struct {
	model.Base
	ProfileType ProfileType `json:"profileType"`
	Systems     []System    `json:"systems"`
	SpaceSuit   SpaceSuit   `json:"spaceSuit"`
}

type XenomorphModel struct {
	model.Base
	ProfileType ProfileType `json:"profileType"`
	Systems     []System    `json:"systems"`
}

func (*HumanModel) Profile() ProfileType     { return ProfileHuman }
func (*MiceModel) Profile() ProfileType      { return ProfileMice }
func (*XenomorphModel) Profile() ProfileType { return ProfileXenomorph }

func (*HumanModel) isMagellanModel()     {}
func (*MiceModel) isMagellanModel()      {}
func (*XenomorphModel) isMagellanModel() {}

// DecodeModel decodes a stored model document into its variant. Unknown
// profile types are rejected here rather than at use sites.
func DecodeModel(raw []byte) (Model, error) {
	var head struct {
		ProfileType ProfileType `json:"profileType"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	var m Model
	switch head.ProfileType {
	case ProfileHuman:
		m = &HumanModel{}
	case ProfileMice:
		m = &MiceModel{}
	case ProfileXenomorph:
		m = &XenomorphModel{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProfile, head.ProfileType)
	}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("decode %s model: %w", head.ProfileType, err)
	}
	return m, nil
}

// SystemsFromNucleotides builds a fully present genome.
func SystemsFromNucleotides(nucleotides []int) ([]System, error) {
	if len(nucleotides) != NumberOfSystems {
		return nil, fmt.Errorf("incorrect nucleotides count %d", len(nucleotides))
	}
	systems := make([]System, NumberOfSystems)
	for i, n := range nucleotides {
		systems[i] = System{Nucleotide: n, Present: true}
	}
	return systems, nil
}
