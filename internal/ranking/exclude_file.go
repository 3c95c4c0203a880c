package ranking

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/board"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes applications contained in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = strings.TrimSpace(cfg.ExcludeFile)
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, apps *board.Applications) (*board.Applications, Step, error) {
	initial := apps.Len()
	if f.path == "" {
		return apps, Step{Initial: initial, Dropped: 0, Left: apps.Len()}, nil
	}

	excluded, err := board.GetExcludedApplicationsFromFile(f.path)
	if err != nil {
		return apps, Step{}, fmt.Errorf("getting excluded applications from file: %w", err)
	}

	removed := apps.Exclude(excluded.IDs())
	if len(removed) > 0 {
		deps.Logger.Info("excluding applications based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_applications", removed),
			zap.Int("applications_left", apps.Len()),
		)
	}

	return apps, Step{Initial: initial, Dropped: len(removed), Left: apps.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func appendToExcludeFile(path string, apps *board.Applications, reason string) error {
	path = strings.TrimSpace(path)
	if path == "" || apps.Len() == 0 {
		return nil
	}

	excluded, err := board.GetExcludedApplicationsFromFile(path)
	if err != nil {
		return fmt.Errorf("load excluded applications: %w", err)
	}

	excluded.Append(apps.ToExcluded(board.ExcludeActorRanking, reason))

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded applications: %w", err)
	}
	return nil
}
