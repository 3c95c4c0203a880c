// Package ranking runs the applications of one job through a sequential pipeline of steps:
// exclusion, scoring, thresholds and truncation.
package ranking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/metrics"
)

const defaultConcurrency = 4

// Filter represents a single ranking step applied to applications.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, apps *board.Applications) (*board.Applications, Step, error)
}

// Deps aggregates dependencies shared across all ranking steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a ranking step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the steps.
type Config struct {
	Concurrency     int      `mapstructure:"concurrency"`
	MinimumScore    float64  `mapstructure:"minimum-score"`
	RequiredTerms   []string `mapstructure:"required-terms"`
	Top             int      `mapstructure:"top"`
	ExcludeFile     string   `mapstructure:"exclude-file"`
	ExcludeRejected bool     `mapstructure:"exclude-rejected"`
	MaxResumeBytes  int64    `mapstructure:"max-resume-bytes"`

	// Options and Matching come from the scoring section.
	Options  matching.Options `mapstructure:"-"`
	Matching matching.Config  `mapstructure:"-"`
}

// Status represents runtime information about a step.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a step with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled step, then executes them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, apps *board.Applications) (*board.Applications, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("ranking step disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, apps)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("ranking step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
		metrics.RankedApplications.WithLabelValues(step.Name()).Observe(float64(info.Left))

		apps = next
	}

	return apps, nil
}

// Describe returns status entries for the provided steps.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
