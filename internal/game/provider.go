package game

import (
	"context"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/model"
)

type ProvideStatus int

const (
	ProvideSuccess ProvideStatus = iota + 1
	ProvideNothing
	ProvideProblems
)

func (s ProvideStatus) String() string {
	switch s {
	case ProvideSuccess:
		return "success"
	case ProvideNothing:
		return "nothing"
	case ProvideProblems:
		return "problems"
	default:
		return fmt.Sprintf("ProvideStatus(%d)", int(s))
	}
}

// ProvideResult is the outcome of a provisioning step. Problems is only set
// for ProvideProblems.
type ProvideResult struct {
	Status   ProvideStatus
	Problems []string
}

func Success() ProvideResult { return ProvideResult{Status: ProvideSuccess} }

func Nothing() ProvideResult { return ProvideResult{Status: ProvideNothing} }

func Failed(problems ...string) ProvideResult {
	return ProvideResult{Status: ProvideProblems, Problems: problems}
}

// Provider runs after a character has been exported. Its failure never
// rolls back the export.
type Provider interface {
	Name() string
	Provide(ctx context.Context, ch *join.CharacterInfo, m model.Model, acc model.Credentials) ProvideResult
}
