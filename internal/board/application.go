package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ApplicationConfig is an application as it appears in the configuration file.
type ApplicationConfig struct {
	ID         string `mapstructure:"id"`
	JobID      string `mapstructure:"job"`
	Candidate  string `mapstructure:"candidate"`
	ResumeFile string `mapstructure:"resume-file"`
}

type Applications struct {
	Items []*Application
}

type Application struct {
	ID         string `json:"id"`
	JobID      string `json:"job_id"`
	Candidate  string `json:"candidate,omitempty"`
	ResumeFile string `json:"resume_file,omitempty"`
	ResumeText string `json:"-"`
	Match      *Match `json:"match,omitempty"`
}

// Match is the scoring outcome attached to an application.
type Match struct {
	Score        float64   `json:"score"`
	MatchedTerms []string  `json:"matched_terms"`
	Strategy     string    `json:"strategy"`
	ScoredAt     time.Time `json:"scored_at"`
	Error        string    `json:"error,omitempty"`
}

// NewApplications converts configured applications. Résumé paths are resolved against baseDir.
func NewApplications(configs []ApplicationConfig, baseDir string) (*Applications, error) {
	apps := &Applications{Items: make([]*Application, 0, len(configs))}
	seen := make(map[string]struct{}, len(configs))

	for i, cfg := range configs {
		id := strings.TrimSpace(cfg.ID)
		if id == "" {
			return nil, fmt.Errorf("application #%d: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("application %s: duplicate id", id)
		}
		seen[id] = struct{}{}

		path := strings.TrimSpace(cfg.ResumeFile)
		if path != "" && !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}

		apps.Items = append(apps.Items, &Application{
			ID:         id,
			JobID:      strings.TrimSpace(cfg.JobID),
			Candidate:  strings.TrimSpace(cfg.Candidate),
			ResumeFile: path,
		})
	}

	return apps, nil
}

func (a *Applications) Len() int {
	return len(a.Items)
}

func (a *Applications) FindByID(id string) *Application {
	for _, app := range a.Items {
		if app.ID == id {
			return app
		}
	}
	return nil
}

func (a *Applications) IDs() []string {
	ids := make([]string, 0, len(a.Items))
	for _, app := range a.Items {
		ids = append(ids, app.ID)
	}
	return ids
}

// ForJob returns the applications submitted to the given job.
func (a *Applications) ForJob(jobID string) *Applications {
	out := &Applications{}
	for _, app := range a.Items {
		if app.JobID == jobID {
			out.Items = append(out.Items, app)
		}
	}
	return out
}

// Keep retains the applications for which keep returns true and returns the ids of dropped ones.
// Order is preserved.
func (a *Applications) Keep(keep func(*Application) bool) []string {
	var dropped []string
	kept := a.Items[:0]
	for _, app := range a.Items {
		if keep(app) {
			kept = append(kept, app)
			continue
		}
		dropped = append(dropped, app.ID)
	}
	for i := len(kept); i < len(a.Items); i++ {
		a.Items[i] = nil
	}
	a.Items = kept
	return dropped
}

// Exclude removes applications by id and returns the removed ids.
func (a *Applications) Exclude(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return a.Keep(func(app *Application) bool {
		_, excluded := set[app.ID]
		return !excluded
	})
}

// SortByScore orders applications by descending score. Unscored and failed applications go last,
// ties are broken by id so the order is stable across runs.
func (a *Applications) SortByScore() {
	sort.SliceStable(a.Items, func(i, j int) bool {
		si, sj := scoreOf(a.Items[i]), scoreOf(a.Items[j])
		if si != sj {
			return si > sj
		}
		return a.Items[i].ID < a.Items[j].ID
	})
}

func scoreOf(app *Application) float64 {
	if app.Match == nil || app.Match.Error != "" {
		return -1
	}
	return app.Match.Score
}

// LoadResume reads the résumé text unless it is already set.
func (a *Application) LoadResume(maxBytes int64) error {
	if a.ResumeText != "" {
		return nil
	}
	text, err := ReadResumeText(a.ResumeFile, maxBytes)
	if err != nil {
		return fmt.Errorf("application %s: %w", a.ID, err)
	}
	a.ResumeText = text
	return nil
}

func (a *Applications) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "applications_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByJob groups applications by job with their scores for display.
func (a *Applications) ReportByJob() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, app := range a.Items {
		entry := map[string]string{
			"id":        app.ID,
			"candidate": app.Candidate,
		}
		if app.Match != nil {
			if app.Match.Error != "" {
				entry["error"] = app.Match.Error
			} else {
				entry["score"] = strconv.FormatFloat(app.Match.Score, 'f', -1, 64)
				entry["matched_terms"] = strings.Join(app.Match.MatchedTerms, ", ")
				entry["strategy"] = app.Match.Strategy
			}
		}
		report[app.JobID] = append(report[app.JobID], entry)
	}
	return report
}

func (a *Applications) ToExcluded(actor, reason string) *ExcludedApplications {
	excluded := &ExcludedApplications{}
	now := time.Now().UTC()
	for _, app := range a.Items {
		excluded.Items = append(excluded.Items, &ExcludedApplication{
			ID:         app.ID,
			JobID:      app.JobID,
			Candidate:  app.Candidate,
			ExcludedAt: now,
			Actor:      actor,
			Reason:     reason,
		})
	}
	return excluded
}
