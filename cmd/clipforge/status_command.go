package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/preflight"
	"clipforge/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment readiness and queue counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Upload: true})
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				state := "ok"
				if !result.Passed {
					state = "FAIL"
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable([]string{"Check", "State", "Detail"}, rows))
			} else {
				for _, row := range rows {
					fmt.Fprintf(out, "%s\t%s\t%s\n", row[0], row[1], row[2])
				}
			}

			store, err := ctx.queueStore()
			if err != nil {
				return err
			}
			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			total := 0
			for _, status := range []queue.Status{queue.StatusQueued, queue.StatusRendered, queue.StatusUploaded, queue.StatusFailed} {
				total += stats[status]
				fmt.Fprintf(out, "%-10s %d\n", status, stats[status])
			}
			fmt.Fprintf(out, "%-10s %d\n", "total", total)
			return nil
		},
	}
}
