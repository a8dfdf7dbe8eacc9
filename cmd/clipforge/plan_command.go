package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/plan"
	"clipforge/internal/queue"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var startFlag string
	var daysFlag int
	var slotFlags []string
	var seedFlags []string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a month plan and merge it into the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			start := startFlag
			if start == "" {
				start = time.Now().Format("2006-01-02")
			}
			days := daysFlag
			if days <= 0 {
				days = cfg.Schedule.Days
			}
			slots := slotFlags
			if len(slots) == 0 {
				slots = cfg.Schedule.Slots
			}

			items, err := plan.MakeMonthPlan(start, seedFlags, slots, plan.Options{
				Days:     days,
				Timezone: cfg.Schedule.Timezone,
				Lines:    cfg.Schedule.DefaultLines,
				Tags:     cfg.Schedule.DefaultTags,
				Subject:  cfg.Schedule.DefaultSubject,
			})
			if err != nil {
				return err
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

			existing, err := store.Load()
			if err != nil {
				return err
			}
			merged, added := mergePlan(existing, items)
			if err := store.Save(merged); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Planned %d items, added %d new (queue now %d)\n",
				len(items), added, len(merged))
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "First plan date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&daysFlag, "days", 0, "Number of days to plan")
	cmd.Flags().StringArrayVar(&slotFlags, "slot", nil, "Daily slot, e.g. \"09:00\" or \"21:00 ET\" (repeatable)")
	cmd.Flags().StringArrayVar(&seedFlags, "seed", nil, "Title seed to cycle through (repeatable)")
	return cmd
}

// mergePlan appends planned items not already present, keyed on title and
// schedule, so re-running plan over an overlapping window is idempotent.
func mergePlan(existing, planned []queue.Item) ([]queue.Item, int) {
	type key struct {
		title    string
		schedule time.Time
	}
	seen := make(map[key]struct{}, len(existing))
	for _, item := range existing {
		seen[key{item.Title, item.Schedule.UTC()}] = struct{}{}
	}

	merged := existing
	added := 0
	for _, item := range planned {
		k := key{item.Title, item.Schedule.UTC()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, item)
		added++
	}
	return merged, added
}
