package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/store"
)

const adhocJobID = "adhoc"

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single plain-text résumé against a job",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "path to the plain-text résumé")
	scoreCmd.Flags().String("job", "", "id of a configured job. Asked interactively when unset")
	scoreCmd.Flags().StringSliceP("terms", "t", nil, "ad-hoc requirement terms instead of a configured job")
	scoreCmd.Flags().String("application", "", "application id to store the result under (requires store.enabled)")

	scoreCmd.MarkFlagRequired("resume")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()

	lg, config := setup("score")

	job, err := resolveJob(cmd, config)
	if err != nil {
		lg.Fatal("choosing a job", zap.Error(err))
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	text, err := board.ReadResumeText(resumePath, config.Ranking.MaxResumeBytes)
	if err != nil {
		lg.Fatal("reading the resume", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, lg)
	if err != nil {
		lg.Fatal("creating a scorer", zap.Error(err))
	}

	result, err := scorer.Score(ctx, scoring.Request{
		ResumeText:     text,
		Requirements:   job.Requirements,
		JobDescription: job.Description,
		Options:        config.Scoring.options(),
	})
	if err != nil {
		lg.Fatal("scoring the resume", zap.Error(err))
	}

	lg.Info("resume scored",
		zap.String(logger.FieldJob, job.ID),
		zap.String(logger.FieldStrategy, scorer.Name()),
		zap.Float64("score", result.Score),
		zap.Strings("matched_terms", result.MatchedTerms),
	)

	applicationID, _ := cmd.Flags().GetString("application")
	switch {
	case applicationID == "":
	case result.IsFallback():
		lg.Warn("not saving a fallback score", zap.String("reason", result.Fallback))
	default:
		if err := saveResult(ctx, config, job.ID, applicationID, scorer.Name(), result); err != nil {
			lg.Fatal("saving the result", zap.Error(err))
		}
		lg.Info("result saved", logger.TargetFields(job.ID, applicationID)...)
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

func resolveJob(cmd *cobra.Command, config *Config) (*board.Job, error) {
	terms, _ := cmd.Flags().GetStringSlice("terms")
	if len(terms) > 0 {
		reqs := make([]matching.Requirement, 0, len(terms))
		for _, term := range terms {
			if term = strings.TrimSpace(term); term != "" {
				reqs = append(reqs, matching.Requirement{Term: term})
			}
		}
		return &board.Job{ID: adhocJobID, Requirements: reqs}, nil
	}

	jobs, err := loadJobs(config)
	if err != nil {
		return nil, err
	}

	id, _ := cmd.Flags().GetString("job")
	return selectJob(jobs, strings.TrimSpace(id))
}

func saveResult(ctx context.Context, config *Config, jobID, applicationID, strategy string, result *matching.Result) error {
	st, err := openStore(ctx, config)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("result store is disabled (set store.enabled)")
	}
	defer st.Close()

	_, err = st.Save(ctx, store.Record{
		JobID:         jobID,
		ApplicationID: applicationID,
		Strategy:      strategy,
		Score:         result.Score,
		MatchedTerms:  result.MatchedTerms,
	})
	return err
}
