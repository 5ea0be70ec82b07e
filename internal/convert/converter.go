// Package convert turns a JoinRPG character into a game model and account.
package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/character"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
)

// DefaultLoginFieldID is the JoinRPG field holding the desired login.
const DefaultLoginFieldID = 3631

var (
	loginPattern  = regexp.MustCompile(`^[\w#$\-*&%.]{3,30}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// Problems collects conversion problems for operator visibility.
type Problems struct {
	list []string
}

func (p *Problems) Add(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

// List returns the collected problems, never nil.
func (p *Problems) List() []string {
	out := make([]string, len(p.list))
	copy(out, p.list)
	return out
}

// Specifics fills in the game-specific part of a model and builds its
// account. Returning an error is a hard failure; problems added without an
// error are soft and keep the model.
type Specifics interface {
	NameFieldID() int
	BuildSpecifics(base model.Base, p *character.Parser, problems *Problems) (model.Model, model.Credentials, error)
}

// Result of one conversion. Model is nil whenever the conversion failed hard.
type Result struct {
	Model    model.Model
	Account  model.Credentials
	Problems []string
}

// Converted reports whether a usable model was produced.
func (r Result) Converted() bool { return r.Model != nil }

type Converter struct {
	specifics    Specifics
	loginFieldID int
	now          func() time.Time
	logger       *zap.SugaredLogger
}

type Option func(*Converter)

// WithClock overrides the clock used for the model timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

func WithLoginField(id int) Option {
	return func(c *Converter) { c.loginFieldID = id }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Converter) { c.logger = l }
}

func New(s Specifics, opts ...Option) *Converter {
	c := &Converter{
		specifics:    s,
		loginFieldID: DefaultLoginFieldID,
		now:          time.Now,
		logger:       zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Convert never panics: any failure ends up in Result.Problems.
func (c *Converter) Convert(p *character.Parser) (res Result) {
	problems := &Problems{}
	defer func() {
		if r := recover(); r != nil {
			problems.Add("Error in converting model %v", r)
			res = Result{Problems: problems.List()}
		}
	}()

	if !p.IsActive() {
		problems.Add("Not active character")
		return Result{Problems: problems.List()}
	}
	c.logger.Debugw("try to convert model", "id", p.CharacterID())

	base := c.baseModel(p, problems)
	m, acc, err := c.specifics.BuildSpecifics(base, p, problems)
	if err != nil {
		problems.Add("Error in converting model %v", err)
		return Result{Problems: problems.List()}
	}
	if m == nil {
		problems.Add("Error in converting model: no model built")
		return Result{Problems: problems.List()}
	}
	return Result{Model: m, Account: acc, Problems: problems.List()}
}

func (c *Converter) baseModel(p *character.Parser, problems *Problems) model.Base {
	base := model.NewBase(c.now())
	base.ID = strconv.Itoa(p.CharacterID())
	base.Login = c.login(p, problems)
	base.IsAlive = true
	base.InGame = p.InGame()

	name := character.ParseName(p.StringValue(c.specifics.NameFieldID(), false))
	base.FirstName = name.FirstName
	base.NicName = name.NicName
	base.LastName = name.LastName
	return base
}

// login keeps an invalid value and only reports it.
func (c *Converter) login(p *character.Parser, problems *Problems) string {
	login := p.StringValue(c.loginFieldID, false)
	if login == "" {
		login = "user" + strconv.Itoa(p.CharacterID())
	}
	if !loginPattern.MatchString(login) || digitsPattern.MatchString(login) {
		problems.Add("Incorrect login %s", login)
	}
	return login
}
