// Package game defines what a concrete game plugs into the importer.
package game

import (
	"github.com/ovaphlow/pitchfork/service-join-import/internal/character"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/convert"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
)

// Game converts characters and supplies provisioning and NPC collaborators.
type Game interface {
	Convert(p *character.Parser) convert.Result
	Providers() []Provider
	NPCCreators() []NPCCreator
}

// NPC is a generated character that bypasses the registration system.
type NPC struct {
	Model   model.Model
	Account model.Credentials
}

// NPCCreator yields Count NPCs with ids starting at firstID.
type NPCCreator interface {
	Name() string
	Count() int
	Generate(firstID int) []NPC
}
