package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
)

// Well-known cache documents.
const (
	MetadataDocID  = "JoinMetadata"
	LastStatsDocID = "lastImportStats"

	// StatsTimeLayout is the minute-precision watermark format.
	StatsTimeLayout = "2006-01-02T15:04"
)

// DefaultImportTime is the watermark used before the first full run.
var DefaultImportTime = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// RunStats is the outcome of the last full import run.
type RunStats struct {
	ImportTime time.Time
	Created    int
	Updated    int
	Imported   int
}

type runStatsDoc struct {
	ID         string `json:"_id"`
	ImportTime string `json:"importTime"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Imported   int    `json:"imported"`
}

func (s RunStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(runStatsDoc{
		ID:         LastStatsDocID,
		ImportTime: s.ImportTime.UTC().Format(StatsTimeLayout),
		Created:    s.Created,
		Updated:    s.Updated,
		Imported:   s.Imported,
	})
}

func (s *RunStats) UnmarshalJSON(b []byte) error {
	var doc runStatsDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	t, err := time.Parse(StatsTimeLayout, doc.ImportTime)
	if err != nil {
		return fmt.Errorf("import time %q: %w", doc.ImportTime, err)
	}
	*s = RunStats{ImportTime: t, Created: doc.Created, Updated: doc.Updated, Imported: doc.Imported}
	return nil
}

// Cache keeps the last fetched metadata, run statistics and raw characters.
type Cache struct {
	repo   *DocumentRepo
	logger *zap.SugaredLogger
}

func NewCache(repo *DocumentRepo, logger *zap.SugaredLogger) *Cache {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{repo: repo, logger: logger}
}

func (c *Cache) SaveMetadata(ctx context.Context, m *join.Metadata) error {
	if _, _, err := c.repo.Save(ctx, MetadataDocID, m, true); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

func (c *Cache) Metadata(ctx context.Context) (*join.Metadata, error) {
	d, err := c.repo.Get(ctx, MetadataDocID)
	if err != nil {
		return nil, err
	}
	var m join.Metadata
	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &m, nil
}

func (c *Cache) SaveLastStats(ctx context.Context, s RunStats) error {
	if _, _, err := c.repo.Save(ctx, LastStatsDocID, s, true); err != nil {
		return fmt.Errorf("save import stats: %w", err)
	}
	return nil
}

// LastStats returns the stored run statistics. Without any, the watermark
// falls back to DefaultImportTime so the first run imports everything.
func (c *Cache) LastStats(ctx context.Context) (RunStats, error) {
	d, err := c.repo.Get(ctx, LastStatsDocID)
	if errors.Is(err, ErrNotFound) {
		c.logger.Warnw("no last import stats, importing everything", "since", DefaultImportTime.Format(StatsTimeLayout))
		return RunStats{ImportTime: DefaultImportTime}, nil
	}
	if err != nil {
		return RunStats{}, err
	}
	var s RunStats
	if err := d.Decode(&s); err != nil {
		return RunStats{}, fmt.Errorf("decode import stats: %w", err)
	}
	return s, nil
}

// SaveCharacter stores the raw record with field names filled in from m.
func (c *Cache) SaveCharacter(ctx context.Context, ch *join.CharacterInfo, m *join.Metadata) (SaveStatus, error) {
	doc := *ch
	doc.Fields = make([]join.FieldInfo, len(ch.Fields))
	for i, f := range ch.Fields {
		if fm := m.Field(f.ProjectFieldID); fm != nil {
			f.FieldName = fm.FieldName
		}
		doc.Fields[i] = f
	}
	status, _, err := c.repo.Save(ctx, strconv.Itoa(ch.CharacterID), &doc, true)
	if err != nil {
		return SaveSkipped, fmt.Errorf("cache character %d: %w", ch.CharacterID, err)
	}
	return status, nil
}

// Character returns a cached raw record.
func (c *Cache) Character(ctx context.Context, id int) (*join.CharacterInfo, error) {
	d, err := c.repo.Get(ctx, strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	var ch join.CharacterInfo
	if err := d.Decode(&ch); err != nil {
		return nil, fmt.Errorf("decode character %d: %w", id, err)
	}
	return &ch, nil
}

// CharacterIDs lists the cached character ids.
func (c *Cache) CharacterIDs(ctx context.Context) ([]int, error) {
	ids, err := c.repo.IDs(ctx)
	if err != nil {
		return nil, err
	}
	out := []int{}
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
