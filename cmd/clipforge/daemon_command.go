package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/logging"
	"clipforge/internal/manager"
	"clipforge/internal/notifications"
	"clipforge/internal/preflight"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var intervalFlag int
	var uploadFlag bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Process due items on a fixed interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			interval := intervalFlag
			if interval <= 0 {
				interval = cfg.Workflow.PollInterval
			}
			if interval <= 0 {
				return fmt.Errorf("poll interval must be positive")
			}

			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, preflight.Options{Upload: uploadFlag})); len(failed) > 0 {
				for _, check := range failed {
					logger.Error("preflight check failed",
						logging.String("check", check.Name),
						logging.String("detail", check.Detail),
					)
				}
				return fmt.Errorf("preflight failed, refusing to start daemon")
			}

			mgr, closer, err := ctx.newManager(false)
			if err != nil {
				return err
			}
			defer closer()

			notifier := notifications.NewService(cfg)

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger.Info("daemon started",
				logging.Int("poll_interval_seconds", interval),
				logging.Bool("upload", uploadFlag),
			)

			ticker := time.NewTicker(time.Duration(interval) * time.Second)
			defer ticker.Stop()

			opts := manager.Options{Limit: cfg.Workflow.BatchLimit, Upload: uploadFlag}
			for {
				summary, err := mgr.ProcessDue(signalCtx, opts)
				if err != nil {
					if signalCtx.Err() != nil {
						break
					}
					logger.Error("processing run failed", logging.Error(err))
					_ = notifier.NotifyError(signalCtx, err, "processing run")
				} else if summary.Picked > 0 {
					logger.Info("processing run finished",
						logging.Int("picked", summary.Picked),
						logging.Int("produced", len(summary.Produced)),
						logging.Int("errors", len(summary.Errors)),
					)
					notifyRunResults(signalCtx, notifier, summary)
				}

				select {
				case <-signalCtx.Done():
				case <-ticker.C:
					continue
				}
				break
			}

			logger.Info("daemon shutting down")
			return nil
		},
	}

	cmd.Flags().IntVar(&intervalFlag, "interval", 0, "Seconds between runs (default from config)")
	cmd.Flags().BoolVar(&uploadFlag, "upload", false, "Upload each rendered item")
	return cmd
}
