package board

import (
	"reflect"
	"testing"

	"github.com/spigell/resume-scorer/internal/matching"
)

func TestNewJobs(t *testing.T) {
	jobs, err := NewJobs([]JobConfig{
		{
			ID:          " backend ",
			Title:       "Backend Engineer",
			Description: "Services",
			Requirements: []any{
				"Node.js",
				map[string]any{"term": "Machine Learning", "weight": 2},
			},
		},
		{ID: "ops"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jobs.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", jobs.Len())
	}

	job := jobs.FindByID("backend")
	if job == nil {
		t.Fatalf("expected job backend to be found")
	}
	want := []matching.Requirement{{Term: "Node.js"}, {Term: "Machine Learning", Weight: 2}}
	if !reflect.DeepEqual(job.Requirements, want) {
		t.Fatalf("expected %+v, got %+v", want, job.Requirements)
	}

	if got := jobs.Labels(); !reflect.DeepEqual(got, []string{"backend: Backend Engineer", "ops"}) {
		t.Fatalf("unexpected labels: %v", got)
	}
	if jobs.FindByID("missing") != nil {
		t.Fatalf("expected nil for unknown job")
	}
}

func TestNewJobsRejectsInvalid(t *testing.T) {
	cases := map[string][]JobConfig{
		"missing id":   {{Title: "No id"}},
		"duplicate id": {{ID: "a"}, {ID: "a"}},
		"empty term":   {{ID: "a", Requirements: []any{map[string]any{"weight": 1}}}},
	}

	for name, configs := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewJobs(configs); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
