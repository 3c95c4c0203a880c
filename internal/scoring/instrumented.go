package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/metrics"
)

type instrumented struct {
	next   Scorer
	logger *zap.Logger
}

// Instrument wraps a Scorer with metrics and debug logging.
func Instrument(next Scorer, logger *zap.Logger) Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instrumented{next: next, logger: logger}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Score(ctx context.Context, req Request) (*matching.Result, error) {
	start := time.Now()
	result, err := i.next.Score(ctx, req)
	elapsed := time.Since(start)

	strategy := i.next.Name()
	metrics.ScoringDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())

	if err != nil {
		metrics.ScoringRequests.WithLabelValues(strategy, metrics.OutcomeError).Inc()
		return nil, err
	}
	outcome := metrics.OutcomeOK
	if result.IsFallback() {
		outcome = metrics.OutcomeFallback
	}
	metrics.ScoringRequests.WithLabelValues(strategy, outcome).Inc()

	i.logger.Debug("resume scored",
		zap.Float64("score", result.Score),
		zap.Strings("matched_terms", result.MatchedTerms),
		zap.Int("requirements", len(req.Requirements)),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}
