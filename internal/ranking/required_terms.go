package ranking

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/matching"
)

type requiredTermsFilter struct {
	terms []string
}

// NewRequiredTerms creates a filter that keeps applications matching every required term.
func NewRequiredTerms() Filter {
	return &requiredTermsFilter{}
}

func (f *requiredTermsFilter) Name() string { return "required_terms" }

func (f *requiredTermsFilter) Disable(string) {}

func (f *requiredTermsFilter) IsEnabled() bool { return true }

func (f *requiredTermsFilter) Validate(cfg *Config) error {
	n := matching.NewNormalizer(cfg.Matching.Punctuation)
	f.terms = nil
	seen := make(map[string]struct{}, len(cfg.RequiredTerms))
	for _, term := range cfg.RequiredTerms {
		normalized := n.NormalizeTerm(term)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		f.terms = append(f.terms, normalized)
	}
	return nil
}

func (f *requiredTermsFilter) Apply(_ context.Context, deps Deps, apps *board.Applications) (*board.Applications, Step, error) {
	initial := apps.Len()
	if len(f.terms) == 0 {
		return apps, Step{Initial: initial, Dropped: 0, Left: apps.Len()}, nil
	}

	dropped := apps.Keep(func(app *board.Application) bool {
		if app.Match == nil || app.Match.Error != "" {
			return true
		}
		matched := make(map[string]struct{}, len(app.Match.MatchedTerms))
		for _, term := range app.Match.MatchedTerms {
			matched[term] = struct{}{}
		}
		for _, term := range f.terms {
			if _, ok := matched[term]; !ok {
				return false
			}
		}
		return true
	})

	if len(dropped) > 0 {
		deps.Logger.Info("excluding applications missing required terms",
			zap.Strings("required_terms", f.terms),
			zap.Strings("excluded_applications", dropped),
			zap.Int("applications_left", apps.Len()),
		)
	}

	return apps, Step{Initial: initial, Dropped: len(dropped), Left: apps.Len()}, nil
}

func (f *requiredTermsFilter) Status() Status {
	details := map[string]string{}
	if len(f.terms) > 0 {
		details["terms"] = strings.Join(f.terms, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
