package ranking

import (
	"context"
	"fmt"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/scoring"
)

// DefaultSteps returns the standard pipeline. Exclusion runs before scoring to avoid scoring
// applications that are dropped anyway.
func DefaultSteps(scorer scoring.Scorer, job *board.Job) []Filter {
	return []Filter{
		NewExcludeFile(),
		NewScore(scorer, job),
		NewMinimumScore(),
		NewRequiredTerms(),
		NewTop(),
	}
}

// Rank scores the applications of job and returns the ones that survive the default pipeline,
// best first.
func Rank(ctx context.Context, cfg *Config, deps Deps, scorer scoring.Scorer, job *board.Job, apps *board.Applications) (*board.Applications, []Status, error) {
	if job == nil {
		return nil, nil, fmt.Errorf("job is required")
	}

	steps := DefaultSteps(scorer, job)
	ranked, err := Run(ctx, cfg, deps, steps, apps.ForJob(job.ID))
	if err != nil {
		return nil, nil, err
	}

	return ranked, Describe(steps), nil
}
