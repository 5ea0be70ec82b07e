package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store bundles the collections used by an import.
type Store struct {
	Models   *DocumentRepo
	Accounts *DocumentRepo
	Events   *EventRepo
	Cache    *Cache

	cacheRepo *DocumentRepo
}

func New(db *sqlx.DB, logger *zap.SugaredLogger) *Store {
	cacheRepo := NewDocumentRepo(db, TableCache)
	return &Store{
		Models:    NewDocumentRepo(db, TableModels),
		Accounts:  NewDocumentRepo(db, TableAccounts),
		Events:    NewEventRepo(db),
		Cache:     NewCache(cacheRepo, logger),
		cacheRepo: cacheRepo,
	}
}

// EnsureSchema creates every table the store needs.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, r := range []*DocumentRepo{s.Models, s.Accounts, s.cacheRepo} {
		if err := r.EnsureTable(ctx); err != nil {
			return err
		}
	}
	return s.Events.EnsureTable(ctx)
}
