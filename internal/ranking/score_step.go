package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/scoring"
)

type scoreStep struct {
	disabled       bool
	reason         string
	scorer         scoring.Scorer
	job            *board.Job
	concurrency    int
	maxResumeBytes int64
	options        matching.Options
}

// NewScore creates the step that scores every application against the job. Résumé text is read
// from the application's file when not loaded yet. Applications whose résumé cannot be read or
// whose scoring fails are kept with the error recorded on their match.
func NewScore(scorer scoring.Scorer, job *board.Job) Filter {
	return &scoreStep{scorer: scorer, job: job}
}

func (f *scoreStep) Name() string { return "score" }

func (f *scoreStep) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *scoreStep) IsEnabled() bool { return !f.disabled }

func (f *scoreStep) Validate(cfg *Config) error {
	if f.scorer == nil {
		return fmt.Errorf("scorer is required")
	}
	if f.job == nil {
		return fmt.Errorf("job is required")
	}

	f.concurrency = cfg.Concurrency
	if f.concurrency <= 0 {
		f.concurrency = defaultConcurrency
	}
	f.options = cfg.Options
	f.maxResumeBytes = cfg.MaxResumeBytes
	return nil
}

func (f *scoreStep) Apply(ctx context.Context, deps Deps, apps *board.Applications) (*board.Applications, Step, error) {
	initial := apps.Len()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, app := range apps.Items {
		g.Go(func() error {
			return f.scoreOne(gctx, deps.Logger, app)
		})
	}

	if err := g.Wait(); err != nil {
		return apps, Step{}, err
	}

	apps.SortByScore()

	return apps, Step{Initial: initial, Dropped: 0, Left: apps.Len()}, nil
}

func (f *scoreStep) scoreOne(ctx context.Context, log *zap.Logger, app *board.Application) error {
	log = logger.WithFields(log, logger.TargetFields(f.job.ID, app.ID)...)

	if app.ResumeFile != "" {
		if err := app.LoadResume(f.maxResumeBytes); err != nil {
			log.Warn("reading resume failed", zap.Error(err))
			app.Match = f.failed(err)
			return nil
		}
	}

	result, err := f.scorer.Score(ctx, scoring.Request{
		ResumeText:     app.ResumeText,
		Requirements:   f.job.Requirements,
		JobDescription: f.job.Description,
		Options:        f.options,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("scoring failed", zap.Error(err))
		app.Match = f.failed(err)
		return nil
	}

	if result.IsFallback() {
		log.Warn("scoring fell back to a zero score", zap.String("reason", result.Fallback))
		app.Match = f.failed(errors.New(result.Fallback))
		return nil
	}

	log.Debug("application scored", zap.Float64("score", result.Score))
	app.Match = &board.Match{
		Score:        result.Score,
		MatchedTerms: result.MatchedTerms,
		Strategy:     f.scorer.Name(),
		ScoredAt:     time.Now().UTC(),
	}
	return nil
}

func (f *scoreStep) failed(err error) *board.Match {
	return &board.Match{
		Strategy: f.scorer.Name(),
		ScoredAt: time.Now().UTC(),
		Error:    err.Error(),
	}
}

func (f *scoreStep) Status() Status {
	details := map[string]string{
		"concurrency": strconv.Itoa(f.concurrency),
		"normalize":   strconv.FormatBool(f.options.Normalize),
	}
	if f.scorer != nil {
		details["strategy"] = f.scorer.Name()
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
