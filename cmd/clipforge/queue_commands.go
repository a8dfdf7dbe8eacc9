package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the schedule queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items in schedule order",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore()
			if err != nil {
				return err
			}
			items, err := store.Load()
			if err != nil {
				return err
			}

			if statusFlag != "" {
				status, ok := queue.ParseStatus(statusFlag)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFlag)
				}
				filtered := items[:0]
				for _, item := range items {
					if item.Status == status {
						filtered = append(filtered, item)
					}
				}
				items = filtered
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}

			if isTerminal(out) {
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.Schedule.UTC().Format(time.RFC3339),
						string(item.Status),
						item.Title,
						item.Error,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Schedule (UTC)", "Status", "Title", "Error"}, rows))
				return nil
			}

			for _, item := range items {
				fmt.Fprintf(out, "%s\t%s\t%s", item.Schedule.UTC().Format(time.RFC3339), item.Status, item.Title)
				if item.Error != "" {
					fmt.Fprintf(out, "\t%s", item.Error)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show items with this status (queued, rendered, uploaded, failed)")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show item counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore()
			if err != nil {
				return err
			}
			stats, err := store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := 0
			for _, status := range []queue.Status{queue.StatusQueued, queue.StatusRendered, queue.StatusUploaded, queue.StatusFailed} {
				count := stats[status]
				total += count
				fmt.Fprintf(out, "%-10s %d\n", status, count)
			}
			fmt.Fprintf(out, "%-10s %d\n", "total", total)
			return nil
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Move failed items back to queued",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore()
			if err != nil {
				return err
			}
			release, err := store.Lock(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			count, err := store.RetryFailed()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d failed item(s) for retry\n", count)
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var failedFlag bool
	var uploadedFlag bool
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove items from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			switch {
			case allFlag:
			case failedFlag && uploadedFlag:
				statuses = []queue.Status{queue.StatusFailed, queue.StatusUploaded}
			case failedFlag:
				statuses = []queue.Status{queue.StatusFailed}
			case uploadedFlag:
				statuses = []queue.Status{queue.StatusUploaded}
			default:
				return fmt.Errorf("pass --failed, --uploaded, or --all to choose what to clear")
			}

			store, err := ctx.queueStore()
			if err != nil {
				return err
			}
			release, err := store.Lock(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			removed, err := store.Clear(statuses...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedFlag, "failed", false, "Clear failed items")
	cmd.Flags().BoolVar(&uploadedFlag, "uploaded", false, "Clear uploaded items")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Clear the entire queue")
	return cmd
}
