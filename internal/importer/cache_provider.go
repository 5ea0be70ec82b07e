package importer

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/game"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
)

// CacheProvider keeps a copy of every exported registration record, with
// field names resolved from the cached metadata.
type CacheProvider struct {
	cache *store.Cache
}

var _ game.Provider = (*CacheProvider)(nil)

func NewCacheProvider(c *store.Cache) *CacheProvider {
	return &CacheProvider{cache: c}
}

func (p *CacheProvider) Name() string { return "cache" }

func (p *CacheProvider) Provide(ctx context.Context, ch *join.CharacterInfo, _ model.Model, _ model.Credentials) game.ProvideResult {
	meta, err := p.cache.Metadata(ctx)
	if err != nil {
		return game.Failed("metadata: " + err.Error())
	}
	status, err := p.cache.SaveCharacter(ctx, ch, meta)
	if err != nil {
		return game.Failed(err.Error())
	}
	if status == store.SaveCreated || status == store.SaveUpdated {
		return game.Success()
	}
	return game.Nothing()
}
