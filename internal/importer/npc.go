package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/export"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/game"
)

// NPCResult counts generated NPCs.
type NPCResult struct {
	Skipped   bool
	Generated int
	Exported  int
	Failed    int
}

// CreateNPCs exports every NPC of the game's creators. Each creator gets its
// own id range starting at InitialNpcID.
func (im *Importer) CreateNPCs(ctx context.Context, ignoreInGame bool) (NPCResult, error) {
	release, ok := im.acquire()
	if !ok {
		im.logger.Infow("import session in progress, NPC creation skipped")
		return NPCResult{Skipped: true}, nil
	}
	defer release()

	log := im.logger.With("run", uuid.NewString())

	var npcs []game.NPC
	next := im.cfg.InitialNpcID
	for _, c := range im.game.NPCCreators() {
		last := next + c.Count() - 1
		log.Infow("will create NPCs", "type", c.Name(), "from", next, "to", last)
		npcs = append(npcs, c.Generate(next)...)
		next = last + 1
	}

	res := NPCResult{Generated: len(npcs)}
	for _, npc := range npcs {
		if err := sleep(ctx, im.cfg.NpcDelay); err != nil {
			return res, err
		}
		id := npc.Model.BaseModel().ID
		log.Infow("about to save NPC", "character", id)
		report, err := im.exporter.Export(ctx, npc.Model, npc.Account, export.Options{
			IsUpdate:     true,
			IgnoreInGame: ignoreInGame,
		})
		if err != nil {
			log.Errorw("NPC export failed", "character", id, "error", err)
			res.Failed++
			continue
		}
		if !report.Exported {
			continue
		}
		im.refresh(ctx, log.With("character", id), npc.Model)
		res.Exported++
		log.Infow("finished with NPC", "character", id)
	}
	log.Infow("NPC creation completed", "generated", res.Generated, "exported", res.Exported, "failed", res.Failed)
	return res, nil
}
