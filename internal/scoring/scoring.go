// Package scoring defines the strategy interface callers use to score a résumé against a job.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/resume-scorer/internal/matching"
)

const (
	// StrategyLocal is the deterministic keyword matcher.
	StrategyLocal = "local"
	// StrategyRemote delegates scoring to a generative model.
	StrategyRemote = "remote"
)

// Request carries the inputs of a single scoring call.
type Request struct {
	ResumeText     string
	Requirements   []matching.Requirement
	JobDescription string
	Options        matching.Options
}

// Scorer scores a résumé against a job. Implementations must not mix strategies within a call.
type Scorer interface {
	Name() string
	Score(ctx context.Context, req Request) (*matching.Result, error)
}

// ParseStrategy validates a configured strategy name. Empty means local.
func ParseStrategy(name string) (string, error) {
	switch s := strings.TrimSpace(strings.ToLower(name)); s {
	case "", StrategyLocal:
		return StrategyLocal, nil
	case StrategyRemote:
		return StrategyRemote, nil
	default:
		return "", fmt.Errorf("unsupported scoring strategy: %s", name)
	}
}
