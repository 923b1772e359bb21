package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/activity-sync/internal/app"
	"github.com/nhle/activity-sync/internal/logger"
	"github.com/nhle/activity-sync/internal/model"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the sync daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if rootOpts.LogLevel != "" {
				cfg.Log.Level = rootOpts.LogLevel
			}
			if rootOpts.LogFormat != "" {
				cfg.Log.Format = rootOpts.LogFormat
			}

			log := logger.New(cfg.Log.Level, cfg.Log.Format)

			a, err := app.New(cfg, log)
			if err != nil {
				return fmt.Errorf("starting activitysync: %w", err)
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.WithField("config", rootOpts.ConfigPath).Info("activitysync running")
			if err := a.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			log.Info("activitysync stopped")
			return nil
		},
	}
}

