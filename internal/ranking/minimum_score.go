package ranking

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/board"
)

type minimumScoreFilter struct {
	threshold   float64
	excludeFile string
}

// NewMinimumScore creates a filter that removes scored applications below ranking.minimum-score.
// Applications whose scoring failed are kept.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(string) {}

func (f *minimumScoreFilter) IsEnabled() bool { return true }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	if cfg.MinimumScore < 0 {
		return fmt.Errorf("minimum score must not be negative: %v", cfg.MinimumScore)
	}
	f.threshold = cfg.MinimumScore
	f.excludeFile = ""
	if cfg.ExcludeRejected {
		f.excludeFile = cfg.ExcludeFile
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, apps *board.Applications) (*board.Applications, Step, error) {
	initial := apps.Len()
	if f.threshold == 0 {
		return apps, Step{Initial: initial, Dropped: 0, Left: apps.Len()}, nil
	}

	rejected := &board.Applications{}
	dropped := apps.Keep(func(app *board.Application) bool {
		if app.Match == nil || app.Match.Error != "" || app.Match.Score >= f.threshold {
			return true
		}
		rejected.Items = append(rejected.Items, app)
		return false
	})

	if len(dropped) > 0 {
		deps.Logger.Info("excluding applications below minimum score",
			zap.Float64("minimum_score", f.threshold),
			zap.Strings("excluded_applications", dropped),
			zap.Int("applications_left", apps.Len()),
		)
	}

	if err := appendToExcludeFile(f.excludeFile, rejected, "score below "+formatScore(f.threshold)); err != nil {
		deps.Logger.Warn("failed to append applications to exclude file",
			zap.String("exclude_file", f.excludeFile),
			zap.Error(err),
		)
	}

	return apps, Step{Initial: initial, Dropped: len(dropped), Left: apps.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	details := map[string]string{
		"minimum_score": formatScore(f.threshold),
	}
	if f.excludeFile != "" {
		details["exclude_rejected_to"] = f.excludeFile
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
