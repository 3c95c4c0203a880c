package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg, config := setup("serve")

	scorer, err := newScorer(ctx, config, lg)
	if err != nil {
		lg.Fatal("creating a scorer", zap.Error(err))
	}

	var results server.ResultStore
	st, err := openStore(ctx, config)
	if err != nil {
		lg.Fatal("opening the result store", zap.Error(err))
	}
	if st != nil {
		defer st.Close()
		results = st
	}

	srv := server.New(*config.Server, scorer, results, lg)
	if err := srv.Run(ctx); err != nil {
		lg.Fatal("server failed", zap.Error(err))
	}
}
