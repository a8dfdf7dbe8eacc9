package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/manifest"
	"clipforge/internal/upload"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var manifestFlag string
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload the entries of an existing render manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := manifestFlag
			if path == "" {
				path = cfg.ManifestPath()
			}
			entries, err := manifest.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "Manifest %s has no entries\n", path)
				return nil
			}

			if !dryRunFlag {
				if err := upload.ValidateEnv(cfg); err != nil {
					return err
				}
			}

			orch, closer, err := ctx.newOrchestrator(dryRunFlag)
			if err != nil {
				return err
			}
			defer closer()

			results := orch.UploadManifest(cmd.Context(), entries)

			failures := 0
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				if result.Status == upload.ResultFailed {
					failures++
				}
				rows = append(rows, []string{result.Title, string(result.Status), result.VideoID, result.Reason})
			}
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable([]string{"Title", "Status", "Video ID", "Reason"}, rows))
			} else {
				for _, row := range rows {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3])
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d upload(s) failed", failures, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestFlag, "manifest", "", "Manifest path (default from config)")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report planned uploads without calling the platform")
	return cmd
}
