package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/resume-scorer/internal/board"
)

type topFilter struct {
	limit int
}

// NewTop creates a filter that keeps the first ranking.top applications. Zero keeps all.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top_n" }

func (f *topFilter) Disable(string) {}

func (f *topFilter) IsEnabled() bool { return true }

func (f *topFilter) Validate(cfg *Config) error {
	if cfg.Top < 0 {
		return fmt.Errorf("top must not be negative: %d", cfg.Top)
	}
	f.limit = cfg.Top
	return nil
}

func (f *topFilter) Apply(_ context.Context, _ Deps, apps *board.Applications) (*board.Applications, Step, error) {
	initial := apps.Len()
	if f.limit == 0 || initial <= f.limit {
		return apps, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := 0
	apps.Keep(func(*board.Application) bool {
		kept++
		return kept <= f.limit
	})

	return apps, Step{Initial: initial, Dropped: initial - apps.Len(), Left: apps.Len()}, nil
}

func (f *topFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"top": strconv.Itoa(f.limit)}}
}
