package command

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/config"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/export"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/game"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/importer"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/magellan"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
	"github.com/ovaphlow/pitchfork/service-join-import/pkg/database"
	"github.com/ovaphlow/pitchfork/service-join-import/pkg/utilities"
)

// app holds everything a command needs.
type app struct {
	cfg      config.Config
	logger   *zap.SugaredLogger
	db       *sqlx.DB
	store    *store.Store
	importer *importer.Importer
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}

func newApp(ctx context.Context) (*app, error) {
	// best-effort: real env or defaults when no .env exists
	_ = godotenv.Load()

	logCfg, err := utilities.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	lg, err := utilities.Init(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{logger: lg.Sugar()}

	if a.cfg, err = config.FromEnv(); err != nil {
		a.Close()
		return nil, err
	}
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.db, err = database.Connect(dbCfg); err != nil {
		a.Close()
		return nil, fmt.Errorf("db connect: %w", err)
	}

	a.store = store.New(a.db, a.logger)
	if err := a.store.EnsureSchema(ctx); err != nil {
		a.Close()
		return nil, err
	}

	g := magellan.New(magellan.Options{
		MiceCount: a.cfg.MiceCount,
		Providers: []game.Provider{importer.NewCacheProvider(a.store.Cache)},
		Logger:    a.logger,
	})
	a.importer = importer.New(a.cfg.Import, join.New(a.cfg.Join), g, a.store,
		importer.WithLogger(a.logger),
		importer.WithExporter(export.New(a.store, export.WithLogger(a.logger))),
	)
	a.logger.Infow("join-import ready", "driver", dbCfg.Driver, "project", a.cfg.Join.ProjectID)
	return a, nil
}
