package cmd

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/resume-scorer/internal/matching"
)

const testConfig = `
scoring:
  strategy: local
  normalize: true
  max-score: 10
jobs:
  - id: backend
    title: Backend Engineer
    requirements:
      - Node.js
      - term: Machine Learning
        weight: 2
applications:
  - id: a1
    job: backend
    resume-file: resumes/a1.txt
ranking:
  minimum-score: 2
  required-terms: [docker]
ai:
  gemini:
    timeout: 15s
`

func TestGetConfig(t *testing.T) {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(testConfig)); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jobs, err := loadJobs(config)
	if err != nil {
		t.Fatalf("load jobs: %v", err)
	}
	want := []matching.Requirement{{Term: "Node.js"}, {Term: "Machine Learning", Weight: 2}}
	if got := jobs.FindByID("backend").Requirements; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if config.Ranking.Options != (matching.Options{Normalize: true, MaxScore: 10}) {
		t.Fatalf("scoring options not passed to ranking: %+v", config.Ranking.Options)
	}
	if config.Ranking.MinimumScore != 2 || !reflect.DeepEqual(config.Ranking.RequiredTerms, []string{"docker"}) {
		t.Fatalf("unexpected ranking config: %+v", config.Ranking)
	}
	if config.Applications[0].ResumeFile != "resumes/a1.txt" || config.Applications[0].JobID != "backend" {
		t.Fatalf("unexpected application: %+v", config.Applications[0])
	}

	if config.AI.Gemini.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", config.AI.Gemini.Timeout)
	}
	if !config.AI.FallbackToZero {
		t.Fatalf("expected fallback-to-zero default")
	}
	if config.AI.Gemini.MaxRetries != 3 || config.Server.Listen != ":8080" {
		t.Fatalf("expected defaults, got %+v %+v", config.AI.Gemini, config.Server)
	}
}

func TestDumpConfigHidesInlineAPIKey(t *testing.T) {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(testConfig)); err != nil {
		t.Fatalf("read config: %v", err)
	}
	viper.Set("ai.gemini.api-key", "sk-inline-secret")
	t.Cleanup(func() { viper.Set("ai.gemini.api-key", "") })

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.AI.Gemini.APIKey != "sk-inline-secret" {
		t.Fatalf("expected api key to be decoded, got %q", config.AI.Gemini.APIKey)
	}

	dump := dumpConfig(config)
	if strings.Contains(dump, "sk-inline-secret") {
		t.Fatalf("api key leaked into config dump: %s", dump)
	}
	if !strings.Contains(dump, `"Model": "gemini-2.5-flash"`) {
		t.Fatalf("expected the rest of the config in dump: %s", dump)
	}
}
