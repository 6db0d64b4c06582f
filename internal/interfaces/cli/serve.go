package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexicon-health/lexicon/internal/app"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}
