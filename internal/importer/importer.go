// Package importer drives import runs from the registration system into the
// game store.
package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/character"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/convert"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/export"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/game"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
)

// Source is the registration system API.
type Source interface {
	Login(ctx context.Context) error
	Metadata(ctx context.Context) (*join.Metadata, error)
	CharacterList(ctx context.Context, since time.Time) ([]join.Character, error)
	Character(ctx context.Context, link string) (*join.CharacterInfo, error)
	CharacterLink(id int) string
}

var _ Source = (*join.Client)(nil)

// RunOptions select what a run does.
type RunOptions struct {
	// CharacterID imports a single character; zero imports everything
	// modified since the watermark.
	CharacterID int
	// Since overrides the stored watermark.
	Since time.Time
	// ListOnly stops after fetching the character list.
	ListOnly     bool
	Export       bool
	Refresh      bool
	IgnoreInGame bool
}

// Result counts what happened to the characters of one run.
type Result struct {
	// Skipped is set when another run held the guard; nothing was done.
	Skipped       bool
	Listed        int
	Imported      int
	Created       int
	Updated       int
	NotInGame     int
	NotConverted  int
	Guarded       int
	Failed        int
	FailedBatches int
}

// Importer runs imports one at a time.
type Importer struct {
	cfg       Config
	source    Source
	game      game.Game
	cache     *store.Cache
	exporter  *export.Exporter
	refresher *export.Refresher
	logger    *zap.SugaredLogger
	now       func() time.Time

	running atomic.Bool

	mu     sync.Mutex
	status Status
}

type Option func(*Importer)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(im *Importer) { im.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

func WithExporter(e *export.Exporter) Option {
	return func(im *Importer) { im.exporter = e }
}

func New(cfg Config, src Source, g game.Game, s *store.Store, opts ...Option) *Importer {
	im := &Importer{
		cfg:    cfg.withDefaults(),
		source: src,
		game:   g,
		cache:  s.Cache,
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(im)
	}
	if im.exporter == nil {
		im.exporter = export.New(s, export.WithLogger(im.logger))
	}
	im.refresher = export.NewRefresher(s, im.logger)
	return im
}

// acquire takes the run guard; the returned func releases it.
func (im *Importer) acquire() (func(), bool) {
	if !im.running.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { im.running.Store(false) }, true
}

// Run performs one import run. Errors are returned only when the run could
// not start; per-character failures are logged and counted in the Result.
// A run requested while another one is active is skipped.
func (im *Importer) Run(ctx context.Context, opts RunOptions) (res Result, err error) {
	release, ok := im.acquire()
	if !ok {
		im.logger.Infow("import session in progress, skipping until the next try")
		return Result{Skipped: true}, nil
	}
	defer release()

	runID := uuid.NewString()
	log := im.logger.With("run", runID)
	started := im.now()
	im.beginStatus(runID, started)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import run panicked: %v", r)
			log.Errorw("import run failed", "error", err)
		}
		im.finishStatus(res, err)
	}()

	log.Infow("run import sequence",
		"id", opts.CharacterID,
		"export", opts.Export,
		"onlyList", opts.ListOnly,
		"refresh", opts.Refresh,
		"since", formatSince(opts.Since),
	)

	res, err = im.run(ctx, log, opts, started)
	if err != nil {
		log.Errorw("import run failed", "error", err)
	}
	return res, err
}

func (im *Importer) run(ctx context.Context, log *zap.SugaredLogger, opts RunOptions, started time.Time) (Result, error) {
	var res Result
	meta, watermark, err := im.prepare(ctx, log)
	if err != nil {
		return res, err
	}
	if !opts.Since.IsZero() {
		watermark = opts.Since
		log.Infow("using update since time", "since", formatSince(watermark))
	}

	list, err := im.characterList(ctx, opts.CharacterID, watermark)
	if err != nil {
		return res, err
	}
	res.Listed = len(list)
	log.Infow("received character list", "count", len(list))
	if opts.ListOnly {
		return res, nil
	}

	for begin := 0; begin < len(list); begin += im.cfg.BurstSize {
		if begin > 0 {
			if err := sleep(ctx, im.cfg.BurstDelay); err != nil {
				return res, err
			}
		}
		end := min(begin+im.cfg.BurstSize, len(list))
		characters, err := im.fetchBatch(ctx, log, list[begin:end])
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.FailedBatches++
			log.Errorw("character batch failed", "from", begin, "to", end, "error", err)
			continue
		}
		for _, ch := range characters {
			im.importCharacter(ctx, log, ch, meta, opts, &res)
		}
	}

	if opts.CharacterID == 0 {
		if res.FailedBatches > 0 {
			log.Warnw("import stats not saved, watermark kept for the next run", "failedBatches", res.FailedBatches)
		} else if err := im.cache.SaveLastStats(ctx, store.RunStats{
			ImportTime: started,
			Created:    res.Created,
			Updated:    res.Updated,
			Imported:   res.Imported,
		}); err != nil {
			log.Errorw("cannot save import stats", "error", err)
		}
	}
	log.Infow("import sequence completed",
		"imported", res.Imported,
		"created", res.Created,
		"updated", res.Updated,
		"failed", res.Failed,
	)
	return res, nil
}

// prepare loads the watermark, authenticates and refreshes the cached
// metadata.
func (im *Importer) prepare(ctx context.Context, log *zap.SugaredLogger) (*join.Metadata, time.Time, error) {
	stats, err := im.cache.LastStats(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load import stats: %w", err)
	}
	log.Infow("import stats", "importTime", stats.ImportTime.Format(store.StatsTimeLayout),
		"created", stats.Created, "imported", stats.Imported, "updated", stats.Updated)

	if err := im.source.Login(ctx); err != nil {
		return nil, time.Time{}, fmt.Errorf("login: %w", err)
	}
	meta, err := im.source.Metadata(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("metadata: %w", err)
	}
	log.Infow("received metadata", "fields", len(meta.Fields))
	if err := im.cache.SaveMetadata(ctx, meta); err != nil {
		return nil, time.Time{}, err
	}
	return meta, stats.ImportTime, nil
}

func (im *Importer) characterList(ctx context.Context, id int, watermark time.Time) ([]join.Character, error) {
	if id != 0 {
		return []join.Character{{CharacterID: id, CharacterLink: im.source.CharacterLink(id)}}, nil
	}
	list, err := im.source.CharacterList(ctx, watermark.Add(-im.cfg.Overlap))
	if err != nil {
		return nil, fmt.Errorf("character list: %w", err)
	}
	return list, nil
}

// fetchBatch loads the details of a batch, retrying the batch as a whole.
func (im *Importer) fetchBatch(ctx context.Context, log *zap.SugaredLogger, batch []join.Character) ([]*join.CharacterInfo, error) {
	op := func() ([]*join.CharacterInfo, error) {
		out := make([]*join.CharacterInfo, 0, len(batch))
		for _, c := range batch {
			ch, err := im.source.Character(ctx, c.CharacterLink)
			if err != nil {
				if !join.Retryable(err) {
					return nil, backoff.Permanent(err)
				}
				return nil, err
			}
			out = append(out, ch)
		}
		return out, nil
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(im.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(im.cfg.FetchRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warnw("character batch fetch failed, retrying", "error", err, "in", next)
		}),
	)
}

func (im *Importer) importCharacter(ctx context.Context, log *zap.SugaredLogger, ch *join.CharacterInfo, meta *join.Metadata, opts RunOptions, res *Result) {
	id := ch.CharacterID
	log = log.With("character", id)

	if im.cfg.OnlyInGame && !ch.InGame {
		log.Infow("character has no InGame flag, not imported")
		res.NotInGame++
		return
	}

	converted := im.game.Convert(character.NewParser(ch, meta))
	if !converted.Converted() {
		log.Warnw("character not converted", "reasons", strings.Join(converted.Problems, "; "))
		res.NotConverted++
		return
	}
	if len(converted.Problems) > 0 {
		log.Warnw("character converted with problems", "problems", strings.Join(converted.Problems, "; "))
	}
	if !opts.Export {
		return
	}

	report, err := im.exporter.Export(ctx, converted.Model, converted.Account, export.Options{
		IsUpdate:     true,
		IgnoreInGame: opts.IgnoreInGame,
	})
	if err != nil {
		log.Errorw("export failed", "error", err)
		res.Failed++
		return
	}
	if !report.Exported {
		res.Guarded++
		return
	}
	switch report.Model {
	case store.SaveCreated:
		res.Created++
	case store.SaveUpdated:
		res.Updated++
	}

	im.provide(ctx, log, ch, converted)
	if opts.Refresh {
		im.refresh(ctx, log, converted.Model)
	}
	res.Imported++
}

// provide runs every provider concurrently. A failing provider is only
// logged.
func (im *Importer) provide(ctx context.Context, log *zap.SugaredLogger, ch *join.CharacterInfo, converted convert.Result) {
	var g errgroup.Group
	for _, p := range im.game.Providers() {
		g.Go(func() error {
			plog := log.With("provider", p.Name())
			defer func() {
				if r := recover(); r != nil {
					plog.Errorw("provider panicked", "error", r)
				}
			}()
			result := p.Provide(ctx, ch, converted.Model, converted.Account)
			switch result.Status {
			case game.ProvideSuccess:
				plog.Infow("provide success")
			case game.ProvideNothing:
				plog.Infow("provide: nothing to do")
			default:
				plog.Warnw("provide failed", "problems", strings.Join(result.Problems, ", "))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (im *Importer) refresh(ctx context.Context, log *zap.SugaredLogger, m model.Model) {
	if _, err := im.refresher.Send(ctx, m); err != nil {
		log.Errorw("cannot send refresh event", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func formatSince(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(store.StatsTimeLayout)
}
