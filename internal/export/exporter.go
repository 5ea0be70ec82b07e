// Package export writes converted models, accounts and refresh events to
// the document store.
package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
)

// refreshStep separates a refresh event from the events queued before it.
const refreshStep = 100

// Options of one export.
type Options struct {
	// IsUpdate overwrites existing documents; otherwise they are left as is.
	IsUpdate bool
	// IgnoreInGame skips the prior model lookup and with it the in-game guard.
	IgnoreInGame bool
}

// Report describes what an export did. Exported is false only when the
// in-game guard stopped it.
type Report struct {
	Exported       bool
	Model          store.SaveStatus
	Account        store.SaveStatus
	Cleared        int
	EventTimestamp int64
}

type Exporter struct {
	models   *store.DocumentRepo
	accounts *store.DocumentRepo
	events   *store.EventRepo
	hasher   PasswordHasher
	logger   *zap.SugaredLogger
}

type Option func(*Exporter)

func WithHasher(h PasswordHasher) Option {
	return func(e *Exporter) { e.hasher = h }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Exporter) { e.logger = l }
}

func New(s *store.Store, opts ...Option) *Exporter {
	e := &Exporter{
		models:   s.Models,
		accounts: s.Accounts,
		events:   s.Events,
		hasher:   BcryptHasher{},
		logger:   zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Export stores the model and account of one character. Store failures,
// revision conflicts included, are returned and never retried here.
func (e *Exporter) Export(ctx context.Context, m model.Model, acc model.Credentials, opts Options) (Report, error) {
	base := m.BaseModel()
	id := base.ID
	log := e.logger.With("character", id)
	log.Infow("exporting converted character")

	prior, err := e.priorModel(ctx, id, opts.IgnoreInGame)
	if err != nil {
		return Report{}, err
	}
	if prior != nil {
		var flags struct {
			InGame bool `json:"inGame"`
		}
		if err := prior.Decode(&flags); err != nil {
			return Report{}, fmt.Errorf("decode stored model %s: %w", id, err)
		}
		if flags.InGame {
			log.Infow("character model already in game, skipping")
			return Report{}, nil
		}
	}

	last, queued, err := e.events.LastTimestamp(ctx, id)
	if err != nil {
		return Report{}, err
	}
	timestamp := base.Timestamp + refreshStep
	if queued {
		timestamp = last + refreshStep
	}

	report := Report{EventTimestamp: timestamp}
	if report.Cleared, err = e.events.Tombstone(ctx, id); err != nil {
		return Report{}, err
	}
	if report.Model, err = e.writeModel(ctx, m, prior, opts); err != nil {
		return Report{}, err
	}
	refresh := &store.Event{CharacterID: id, EventType: model.RefreshEventType, Timestamp: timestamp}
	if err := e.events.Append(ctx, refresh); err != nil {
		return Report{}, err
	}
	if report.Account, err = e.writeAccount(ctx, acc, opts.IsUpdate); err != nil {
		return Report{}, err
	}
	report.Exported = true

	log.Infow("exported model and account",
		"model", report.Model.String(),
		"account", report.Account.String(),
		"clearedEvents", report.Cleared,
		"refreshAt", timestamp,
	)
	return report, nil
}

func (e *Exporter) priorModel(ctx context.Context, id string, ignoreInGame bool) (*store.Document, error) {
	if ignoreInGame {
		e.logger.Infow("override inGame flag", "character", id)
		return nil, nil
	}
	d, err := e.models.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup model %s: %w", id, err)
	}
	return &d, nil
}

// writeModel reuses the revision read by the guard so a concurrent change
// since then surfaces as store.ErrConflict.
func (e *Exporter) writeModel(ctx context.Context, m model.Model, prior *store.Document, opts Options) (store.SaveStatus, error) {
	base := m.BaseModel()
	if opts.IgnoreInGame {
		status, rev, err := e.models.Save(ctx, base.ID, m, opts.IsUpdate)
		if err != nil {
			return store.SaveSkipped, err
		}
		base.Rev = rev
		return status, nil
	}
	if prior == nil {
		rev, err := e.models.Create(ctx, base.ID, m)
		if err != nil {
			return store.SaveSkipped, err
		}
		base.Rev = rev
		return store.SaveCreated, nil
	}
	if !opts.IsUpdate {
		base.Rev = prior.Rev
		return store.SaveExists, nil
	}
	rev, err := e.models.Update(ctx, base.ID, prior.Rev, m)
	if err != nil {
		return store.SaveSkipped, err
	}
	base.Rev = rev
	return store.SaveUpdated, nil
}

func (e *Exporter) writeAccount(ctx context.Context, acc model.Credentials, update bool) (store.SaveStatus, error) {
	if acc == nil {
		return store.SaveSkipped, nil
	}
	a := acc.AccountBase()
	if !a.HasCredentials() {
		e.logger.Infow("skip providing account", "character", a.ID)
		return store.SaveSkipped, nil
	}
	if err := e.hashPassword(ctx, a); err != nil {
		return store.SaveSkipped, err
	}
	status, rev, err := e.accounts.Save(ctx, a.ID, acc, update)
	if err != nil {
		return store.SaveSkipped, err
	}
	a.Rev = rev
	return status, nil
}

// hashPassword keeps the stored hash while it still matches the password.
func (e *Exporter) hashPassword(ctx context.Context, a *model.Account) error {
	if a.Password == "" {
		return nil
	}
	d, err := e.accounts.Get(ctx, a.ID)
	switch {
	case err == nil:
		var stored model.Account
		if d.Decode(&stored) == nil && stored.PasswordHash != "" && e.hasher.Verify(stored.PasswordHash, a.Password) {
			a.PasswordHash = stored.PasswordHash
			return nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return err
	}
	hash, _, err := e.hasher.Hash(a.Password)
	if err != nil {
		return fmt.Errorf("hash password of %s: %w", a.ID, err)
	}
	a.PasswordHash = hash
	return nil
}
