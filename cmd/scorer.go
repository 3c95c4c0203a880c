package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/ai/gemini"
	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/secrets"
	"github.com/spigell/resume-scorer/internal/store"
)

// setup builds the logger and reads the configuration shared by all commands.
func setup(command string) (*zap.Logger, *Config) {
	lg, err := logger.New(logger.Config{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	lg.Info("starting the "+app, zap.String("command", command), zap.String("version", version))

	lg.Debug(fmt.Sprintf("starting with config: \n %s", dumpConfig(config)))

	return lg, config
}

// dumpConfig renders the config for debug output. Inline secrets are not included.
func dumpConfig(config *Config) string {
	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	return string(pretty)
}

// newScorer builds the configured strategy wrapped with metrics.
func newScorer(ctx context.Context, config *Config, base *zap.Logger) (scoring.Scorer, error) {
	strategy, err := scoring.ParseStrategy(config.Scoring.Strategy)
	if err != nil {
		return nil, err
	}

	if strategy == scoring.StrategyLocal {
		return scoring.Instrument(
			scoring.NewLocal(config.Scoring.matching()),
			logger.WithStrategy(base, strategy, ""),
		), nil
	}

	remote, model, err := newRemoteScorer(ctx, config, base)
	if err != nil {
		return nil, fmt.Errorf("building remote scorer: %w", err)
	}

	return scoring.Instrument(remote, logger.WithStrategy(base, strategy, model)), nil
}

func newRemoteScorer(ctx context.Context, config *Config, base *zap.Logger) (*gemini.Scorer, string, error) {
	cfg := config.AI.Gemini

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithStrategy(base, scoring.StrategyRemote, cfg.Model).With(
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
		zap.Duration("ai_timeout", cfg.Timeout),
	)

	generator, err := gemini.NewGenerator(ctx, gemini.GeneratorConfig{
		APIKey:     apiKey,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
	}, genLogger)
	if err != nil {
		return nil, "", err
	}

	scorer := gemini.NewScorer(generator, gemini.ScorerConfig{
		Matching:       config.Scoring.matching(),
		MaxLogLength:   cfg.MaxLogLength,
		FallbackToZero: config.AI.FallbackToZero,
	}, logger.WithStrategy(base, scoring.StrategyRemote, generator.Model()))

	return scorer, generator.Model(), nil
}

// openStore returns nil when the store is disabled.
func openStore(ctx context.Context, config *Config) (*store.Store, error) {
	if !config.Store.Enabled {
		return nil, nil
	}
	return store.Open(ctx, config.Store.Path)
}

func loadJobs(config *Config) (*board.Jobs, error) {
	jobs, err := board.NewJobs(config.Jobs)
	if err != nil {
		return nil, fmt.Errorf("parsing jobs: %w", err)
	}
	return jobs, nil
}

// selectJob returns the job given by id or asks the user to choose one.
func selectJob(jobs *board.Jobs, id string) (*board.Job, error) {
	if id != "" {
		job := jobs.FindByID(id)
		if job == nil {
			return nil, fmt.Errorf("there is no such job id %s", id)
		}
		return job, nil
	}

	switch jobs.Len() {
	case 0:
		return nil, fmt.Errorf("no jobs configured")
	case 1:
		return jobs.Items[0], nil
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: jobs.Labels(),
	}

	idx, _, err := jobPrompt.Run()
	if err != nil {
		return nil, err
	}

	return jobs.Items[idx], nil
}
