package export

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
)

// refreshDelay places a standalone refresh event after the model timestamp.
const refreshDelay = 1000

// Refresher asks downstream builders to recompute a character's views.
type Refresher struct {
	events *store.EventRepo
	logger *zap.SugaredLogger
}

func NewRefresher(s *store.Store, logger *zap.SugaredLogger) *Refresher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Refresher{events: s.Events, logger: logger}
}

// Send queues a refresh event ordered after every event already queued for
// the character.
func (r *Refresher) Send(ctx context.Context, m model.Model) (*store.Event, error) {
	base := m.BaseModel()
	timestamp := time.Now().UnixMilli()
	if base.Timestamp != 0 {
		timestamp = base.Timestamp + refreshDelay
	}
	last, queued, err := r.events.LastTimestamp(ctx, base.ID)
	if err != nil {
		return nil, err
	}
	if queued && last >= timestamp {
		timestamp = last + refreshStep
	}

	ev := &store.Event{CharacterID: base.ID, EventType: model.RefreshEventType, Timestamp: timestamp}
	if err := r.events.Append(ctx, ev); err != nil {
		return nil, err
	}
	r.logger.Infow("refresh event sent", "character", base.ID, "timestamp", timestamp)
	return ev, nil
}
