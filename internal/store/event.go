package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-join-import/pkg/database"
	"github.com/ovaphlow/pitchfork/service-join-import/pkg/utilities"
)

// queuedLimit caps one queued-event listing.
const queuedLimit = 10000

// Event is a queued instruction for the downstream game engine.
type Event struct {
	ID          string `db:"id" json:"_id"`
	CharacterID string `db:"character_id" json:"characterId"`
	EventType   string `db:"event_type" json:"eventType"`
	Timestamp   int64  `db:"event_timestamp" json:"timestamp"`
	// Data is a JSON object.
	Data string `db:"data" json:"data"`
}

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) EnsureTable(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  character_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  event_timestamp BIGINT NOT NULL,
  data JSONB NOT NULL DEFAULT '{}'::jsonb,
  deleted BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE INDEX IF NOT EXISTS idx_events_character ON events (character_id, deleted)`,
	}
	if r.db.DriverName() == database.DriverSQLite {
		ddl[0] = `CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  character_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  event_timestamp BIGINT NOT NULL,
  data TEXT NOT NULL DEFAULT '{}',
  deleted BOOLEAN NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	}
	for _, stmt := range ddl {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure events: %w", err)
		}
	}
	return nil
}

// Queued returns the character's events that are not tombstoned, oldest
// first.
func (r *EventRepo) Queued(ctx context.Context, characterID string) ([]Event, error) {
	q := r.db.Rebind(`SELECT id, character_id, event_type, event_timestamp, data
  FROM events WHERE character_id = ? AND deleted = ?
  ORDER BY event_timestamp, id LIMIT ?`)
	events := []Event{}
	if err := r.db.SelectContext(ctx, &events, q, characterID, false, queuedLimit); err != nil {
		return nil, fmt.Errorf("queued events of %s: %w", characterID, err)
	}
	return events, nil
}

// LastTimestamp returns the newest timestamp among the character's queued
// events; the flag is false when nothing is queued.
func (r *EventRepo) LastTimestamp(ctx context.Context, characterID string) (int64, bool, error) {
	var last sql.NullInt64
	q := r.db.Rebind(`SELECT MAX(event_timestamp) FROM events WHERE character_id = ? AND deleted = ?`)
	if err := r.db.GetContext(ctx, &last, q, characterID, false); err != nil {
		return 0, false, fmt.Errorf("last event of %s: %w", characterID, err)
	}
	return last.Int64, last.Valid, nil
}

// Tombstone marks every queued event of the character deleted and returns
// how many were affected.
func (r *EventRepo) Tombstone(ctx context.Context, characterID string) (int, error) {
	q := r.db.Rebind(`UPDATE events SET deleted = ? WHERE character_id = ? AND deleted = ?`)
	res, err := r.db.ExecContext(ctx, q, true, characterID, false)
	if err != nil {
		return 0, fmt.Errorf("tombstone events of %s: %w", characterID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Append stores the events in one transaction. Missing ids are generated and
// written back.
func (r *EventRepo) Append(ctx context.Context, events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`INSERT INTO events (id, character_id, event_type, event_timestamp, data) VALUES (?, ?, ?, ?, ?)`)
	for _, e := range events {
		if e.ID == "" {
			e.ID = utilities.NewSnowflakeID()
		}
		if e.Data == "" {
			e.Data = "{}"
		}
		if _, err := tx.ExecContext(ctx, q, e.ID, e.CharacterID, e.EventType, e.Timestamp, e.Data); err != nil {
			return fmt.Errorf("append event %s for %s: %w", e.EventType, e.CharacterID, err)
		}
	}
	return tx.Commit()
}
