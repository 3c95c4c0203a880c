// Package board holds the job-board values the scoring commands work with:
// jobs with their requirements, applications with extracted résumé text and exclusion lists.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-scorer/internal/matching"
)

// JobConfig is a job as it appears in the configuration file.
// Requirements may mix bare strings and {term, weight} maps.
type JobConfig struct {
	ID           string `mapstructure:"id"`
	Title        string `mapstructure:"title"`
	Description  string `mapstructure:"description"`
	Requirements []any  `mapstructure:"requirements"`
}

type Jobs struct {
	Items []*Job
}

type Job struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Requirements []matching.Requirement `json:"requirements"`
}

// NewJobs converts configured jobs into typed values, rejecting duplicates and missing ids.
func NewJobs(configs []JobConfig) (*Jobs, error) {
	jobs := &Jobs{Items: make([]*Job, 0, len(configs))}
	seen := make(map[string]struct{}, len(configs))

	for i, cfg := range configs {
		id := strings.TrimSpace(cfg.ID)
		if id == "" {
			return nil, fmt.Errorf("job #%d: %w", i, errors.New("id is required"))
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("job %s: duplicate id", id)
		}
		seen[id] = struct{}{}

		reqs, err := matching.DecodeRequirements(cfg.Requirements)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", id, err)
		}

		jobs.Items = append(jobs.Items, &Job{
			ID:           id,
			Title:        strings.TrimSpace(cfg.Title),
			Description:  strings.TrimSpace(cfg.Description),
			Requirements: reqs,
		})
	}

	return jobs, nil
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// Labels returns "id: title" strings for interactive selection.
func (j *Jobs) Labels() []string {
	labels := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		labels = append(labels, job.Label())
	}
	return labels
}

func (j *Job) Label() string {
	if j.Title == "" {
		return j.ID
	}
	return fmt.Sprintf("%s: %s", j.ID, j.Title)
}
