package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/manager"
	"clipforge/internal/notifications"
	"clipforge/internal/preflight"
	"clipforge/internal/upload"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var uploadFlag bool
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process due queue items once",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runOnce(cmd.Context(), ctx, limitFlag, uploadFlag, dryRunFlag)
			if err != nil {
				return err
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum items to process (default from config)")
	cmd.Flags().BoolVar(&uploadFlag, "upload", false, "Upload each rendered item")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report planned uploads without calling the platform")
	return cmd
}

func runOnce(cmdCtx context.Context, ctx *commandContext, limit int, doUpload, dryRun bool) (manager.Summary, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return manager.Summary{}, err
	}

	if failed := preflight.Failed(preflight.RunAll(cmdCtx, cfg, preflight.Options{Upload: doUpload && !dryRun})); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, check := range failed {
			details = append(details, fmt.Sprintf("%s: %s", check.Name, check.Detail))
		}
		return manager.Summary{}, fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
	}

	if limit <= 0 {
		limit = cfg.Workflow.BatchLimit
	}

	mgr, closer, err := ctx.newManager(dryRun)
	if err != nil {
		return manager.Summary{}, err
	}
	defer closer()

	notifier := notifications.NewService(cfg)
	summary, err := mgr.ProcessDue(cmdCtx, manager.Options{
		Limit:  limit,
		Upload: doUpload,
		DryRun: dryRun,
	})
	if err != nil {
		_ = notifier.NotifyError(cmdCtx, err, "processing run")
		return summary, err
	}
	notifyRunResults(cmdCtx, notifier, summary)
	return summary, nil
}

// printSummary lists the per-item outcomes of a run under the headline
// counts.
func printSummary(cmd *cobra.Command, summary manager.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Picked %d, produced %d, errors %d\n",
		summary.Picked, len(summary.Produced), len(summary.Errors))
	for _, outcome := range summary.Produced {
		fmt.Fprintf(out, "%s\t%s\t%s", outcome.Schedule.UTC().Format(time.RFC3339), outcome.Status, outcome.Title)
		for _, result := range outcome.Uploads {
			if result.VideoID != "" {
				fmt.Fprintf(out, "\t%s", result.VideoID)
			}
		}
		fmt.Fprintln(out)
	}
	for _, message := range summary.Errors {
		fmt.Fprintf(out, "error: %s\n", message)
	}
}

// notifyRunResults reports per-item upload failures and the overall run
// outcome to the configured notification service.
func notifyRunResults(ctx context.Context, notifier notifications.Service, summary manager.Summary) {
	for _, outcome := range summary.Produced {
		for _, result := range outcome.Uploads {
			if result.Status == upload.ResultFailed {
				_ = notifier.NotifyUploadFailed(ctx, result.Title, result.Reason)
			}
		}
	}
	if summary.Picked > 0 {
		_ = notifier.NotifyRunCompleted(ctx, summary.Picked, len(summary.Produced), len(summary.Errors))
	}
}
