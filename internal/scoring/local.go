package scoring

import (
	"context"

	"github.com/spigell/resume-scorer/internal/matching"
)

// Local adapts the keyword matcher to the Scorer interface.
type Local struct {
	scorer *matching.KeywordScorer
}

// NewLocal creates the local keyword strategy.
func NewLocal(cfg matching.Config) *Local {
	return &Local{scorer: matching.NewKeywordScorer(cfg)}
}

func (l *Local) Name() string { return StrategyLocal }

// Score never fails. The context is ignored because matching does no I/O.
func (l *Local) Score(_ context.Context, req Request) (*matching.Result, error) {
	return l.scorer.Score(req.ResumeText, req.Requirements, req.Options), nil
}
