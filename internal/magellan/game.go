package magellan

import (
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/character"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/convert"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/game"
)

type Options struct {
	MiceCount int
	Providers []game.Provider
	Logger    *zap.SugaredLogger
	// Clock overrides time.Now for model timestamps.
	Clock func() time.Time
}

// Game wires the Magellan conversion into the importer.
type Game struct {
	converter *convert.Converter
	providers []game.Provider
	creators  []game.NPCCreator
}

var _ game.Game = (*Game)(nil)

func New(opts Options) *Game {
	convertOpts := []convert.Option{}
	if opts.Logger != nil {
		convertOpts = append(convertOpts, convert.WithLogger(opts.Logger))
	}
	mice := NewMiceCreator(opts.MiceCount)
	if opts.Clock != nil {
		convertOpts = append(convertOpts, convert.WithClock(opts.Clock))
		mice.now = opts.Clock
	}
	g := &Game{
		converter: convert.New(specifics{}, convertOpts...),
		providers: opts.Providers,
	}
	if opts.MiceCount > 0 {
		g.creators = append(g.creators, mice)
	}
	return g
}

func (g *Game) Convert(p *character.Parser) convert.Result {
	return g.converter.Convert(p)
}

func (g *Game) Providers() []game.Provider { return g.providers }

func (g *Game) NPCCreators() []game.NPCCreator { return g.creators }
