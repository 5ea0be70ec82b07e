package magellan

import (
	"strconv"
	"time"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/game"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
)

// MiceCreator generates lab mice: in-game NPCs with an all-zero genome and
// no account.
type MiceCreator struct {
	count int
	now   func() time.Time
}

func NewMiceCreator(count int) *MiceCreator {
	return &MiceCreator{count: count, now: time.Now}
}

func (c *MiceCreator) Name() string { return "mice" }

func (c *MiceCreator) Count() int { return c.count }

func (c *MiceCreator) Generate(firstID int) []game.NPC {
	npcs := make([]game.NPC, 0, c.count)
	for id := firstID; id < firstID+c.count; id++ {
		systems, _ := SystemsFromNucleotides(make([]int, NumberOfSystems))

		base := model.NewBase(c.now())
		base.ID = strconv.Itoa(id)
		base.Login = "mice" + strconv.Itoa(id)
		base.IsAlive = true
		base.InGame = true
		base.FirstName = "Микки"
		base.NicName = "Мышь"
		base.LastName = "Маус"

		npcs = append(npcs, game.NPC{Model: &MiceModel{
			Base:        base,
			ProfileType: ProfileMice,
			Systems:     systems,
			SpaceSuit:   newSpaceSuit(),
		}})
	}
	return npcs
}
