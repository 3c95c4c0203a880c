package cmd

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/ranking"
	"github.com/spigell/resume-scorer/internal/server"
	"github.com/spigell/resume-scorer/internal/store"
)

const (
	app = "resume-scorer"
)

type Config struct {
	Scoring      *ScoringConfig            `mapstructure:"scoring"`
	Jobs         []board.JobConfig         `mapstructure:"jobs"`
	Applications []board.ApplicationConfig `mapstructure:"applications"`
	Ranking      *ranking.Config           `mapstructure:"ranking"`
	Store        *store.Config             `mapstructure:"store"`
	Server       *server.Config            `mapstructure:"server"`
	AI           *AIConfig                 `mapstructure:"ai"`
}

type ScoringConfig struct {
	Strategy    string  `mapstructure:"strategy"`
	Punctuation string  `mapstructure:"punctuation"`
	Normalize   bool    `mapstructure:"normalize"`
	MaxScore    float64 `mapstructure:"max-score"`
}

type AIConfig struct {
	FallbackToZero bool          `mapstructure:"fallback-to-zero"`
	Gemini         *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key" json:"-"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

func (c *ScoringConfig) matching() matching.Config {
	return matching.Config{Punctuation: c.Punctuation}
}

func (c *ScoringConfig) options() matching.Options {
	return matching.Options{Normalize: c.Normalize, MaxScore: c.MaxScore}
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-scorer ranks plain-text résumés against job requirement keywords",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("RESUME_SCORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	viper.SetDefault("scoring.strategy", "local")
	viper.SetDefault("scoring.max-score", matching.DefaultMaxScore)
	viper.SetDefault("ranking.concurrency", 4)
	viper.SetDefault("store.path", store.DefaultPath)
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.shutdown-timeout", "30s")
	viper.SetDefault("ai.fallback-to-zero", true)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("strategy", "", "scoring strategy: local or remote (overrides scoring.strategy)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("scoring.strategy", rootCmd.PersistentFlags().Lookup("strategy"))
}

func initConfig() {
	// version does not need any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine: every command can run on defaults and flags.
	// An explicitly given or unparsable config is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.Ranking == nil {
		config.Ranking = &ranking.Config{}
	}
	if config.Store == nil {
		config.Store = &store.Config{}
	}
	if config.Server == nil {
		config.Server = &server.Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	config.Ranking.Options = config.Scoring.options()
	config.Ranking.Matching = config.Scoring.matching()

	return config, nil
}

// baseDir is where relative résumé paths are resolved from: the config file directory.
func baseDir() string {
	used := viper.ConfigFileUsed()
	if used == "" {
		return ""
	}
	return filepath.Dir(used)
}
