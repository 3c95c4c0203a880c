package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/board"
	"github.com/spigell/resume-scorer/internal/ranking"
	"github.com/spigell/resume-scorer/internal/store"
)

const (
	PromptSave                = "Save results"
	PromptReportByJobs        = "Report by jobs"
	PromptApplicationsToFile  = "Dump applications to file"
	PromptAppendToExcludeFile = "Append all applications to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank all applications of a job",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("job", "", "id of a configured job. Asked interactively when unset")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for actions: save (when the store is enabled), report and exit")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with applications to exclude. Default is unset.")
	rankCmd.Flags().Int("top", 0, "keep only the best N applications")

	viper.BindPFlag("ranking.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("ranking.top", rankCmd.Flags().Lookup("top"))
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()

	lg, config := setup("rank")

	jobs, err := loadJobs(config)
	if err != nil {
		lg.Fatal("loading jobs", zap.Error(err))
	}

	id, _ := cmd.Flags().GetString("job")
	job, err := selectJob(jobs, strings.TrimSpace(id))
	if err != nil {
		lg.Fatal("choosing a job", zap.Error(err))
	}

	apps, err := board.NewApplications(config.Applications, baseDir())
	if err != nil {
		lg.Fatal("loading applications", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, lg)
	if err != nil {
		lg.Fatal("creating a scorer", zap.Error(err))
	}

	st, err := openStore(ctx, config)
	if err != nil {
		lg.Fatal("opening the result store", zap.Error(err))
	}
	if st != nil {
		defer st.Close()
	}

	lg.Info("ranking applications", zap.String("job_id", job.ID), zap.Int("count", apps.ForJob(job.ID).Len()))

	ranked, statuses, err := ranking.Rank(ctx, config.Ranking, ranking.Deps{Logger: lg}, scorer, job, apps)
	if err != nil {
		lg.Fatal("ranking failed", zap.Error(err))
	}

	for _, status := range statuses {
		lg.Debug("ranking step status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	if ranked.Len() == 0 {
		lg.Info("exiting", zap.String("reason", "no applications left after ranking"))
		return
	}

	if auto, _ := cmd.Flags().GetBool("auto-approve"); auto {
		if st != nil {
			if err := handleAction(ctx, PromptSave, lg, config, st, ranked); err != nil {
				lg.Fatal("exiting", zap.Error(err))
			}
		}
		if err := handleAction(ctx, PromptReportByJobs, lg, config, st, ranked); err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		lg.Info("current list of applications", zap.Int("count", ranked.Len()))

		actionPrompt := promptui.Select{
			Label: "What next?",
			Items: promptItems(config, st, ranked),
		}

		_, action, err := actionPrompt.Run()
		if err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, lg, config, st, ranked); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			lg.Fatal("exiting", zap.Error(err))
		}
	}
}

func promptItems(config *Config, st *store.Store, apps *board.Applications) []string {
	items := []string{PromptReportByJobs, PromptApplicationsToFile}
	if st != nil {
		items = append([]string{PromptSave}, items...)
	}
	if strings.TrimSpace(config.Ranking.ExcludeFile) != "" && apps.Len() != 0 {
		items = append(items, PromptAppendToExcludeFile)
	}
	return append(items, PromptExit)
}

func handleAction(ctx context.Context, action string, lg *zap.Logger, config *Config, st *store.Store, apps *board.Applications) error {
	switch action {
	case PromptSave:
		saved, err := saveApplications(ctx, st, apps)
		if err != nil {
			return fmt.Errorf("save results: %w", err)
		}
		lg.Info("results saved", zap.Int("count", saved), zap.String("path", config.Store.Path))
		return nil
	case PromptReportByJobs:
		pretty, _ := json.MarshalIndent(apps.ReportByJob(), "", "  ")
		lg.Info(string(pretty), zap.Int("applications count", apps.Len()))
		return nil
	case PromptApplicationsToFile:
		filename, err := apps.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		lg.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		excludeFile := config.Ranking.ExcludeFile
		excluded, err := board.GetExcludedApplicationsFromFile(excludeFile)
		if err != nil {
			return err
		}

		excluded.Append(apps.ToExcluded(board.ExcludeActorUser, ""))

		if err = excluded.ToFile(excludeFile); err != nil {
			return err
		}

		lg.Info("appended to exclude file", zap.String("filename", excludeFile))

		apps.Exclude(excluded.IDs())
		return nil
	case PromptExit:
		lg.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// saveApplications stores every successfully scored application.
func saveApplications(ctx context.Context, st *store.Store, apps *board.Applications) (int, error) {
	if st == nil {
		return 0, fmt.Errorf("result store is disabled")
	}

	saved := 0
	for _, app := range apps.Items {
		if app.Match == nil || app.Match.Error != "" {
			continue
		}
		_, err := st.Save(ctx, store.Record{
			JobID:         app.JobID,
			ApplicationID: app.ID,
			Strategy:      app.Match.Strategy,
			Score:         app.Match.Score,
			MatchedTerms:  app.Match.MatchedTerms,
			ScoredAt:      app.Match.ScoredAt,
		})
		if err != nil {
			return saved, fmt.Errorf("application %s: %w", app.ID, err)
		}
		saved++
	}
	return saved, nil
}
