// Package plan expands a start date, daily slots, and a pool of topic seeds
// into a full calendar of queued schedule items.
package plan

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipforge/internal/queue"
	"clipforge/internal/schedule"
)

// Options control month plan generation. Zero values fall back to the
// built-in defaults.
type Options struct {
	Days     int
	Timezone string
	Lines    []string
	Tags     []string
	Subject  string
}

const defaultDays = 30

var defaultSlots = []string{"09:00", "15:00", "21:00"}

var titleCaser = cases.Title(language.English)

// MakeMonthPlan produces len(slots)*days queued items walking dates outward
// from startDate, date-major and slot-minor. Seeds are consumed round-robin;
// when none are given, synthetic placeholder titles are generated.
func MakeMonthPlan(startDate string, seeds, slots []string, opts Options) ([]queue.Item, error) {
	start, err := time.Parse("2006-01-02", strings.TrimSpace(startDate))
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q must be in YYYY-MM-DD form", schedule.ErrParse, startDate)
	}

	days := opts.Days
	if days <= 0 {
		days = defaultDays
	}
	tz := strings.TrimSpace(opts.Timezone)
	if tz == "" {
		tz = "UTC"
	}

	slotList := cleanStrings(slots)
	if len(slotList) == 0 {
		slotList = defaultSlots
	}

	total := len(slotList) * days
	titles := expandSeeds(cleanStrings(seeds), total, opts.Subject)

	lines := cleanStrings(opts.Lines)
	if len(lines) == 0 {
		lines = queue.DefaultLines()
	}
	tags := cleanStrings(opts.Tags)
	if len(tags) == 0 {
		tags = queue.DefaultTags()
	}

	items := make([]queue.Item, 0, total)
	index := 0
	for dayOffset := 0; dayOffset < days; dayOffset++ {
		date := start.AddDate(0, 0, dayOffset).Format("2006-01-02")
		for _, slot := range slotList {
			combined, err := schedule.CombineDateSlot(date, slot, tz)
			if err != nil {
				return nil, err
			}
			item := queue.Item{
				Title:    titles[index],
				Lines:    append([]string(nil), lines...),
				Tags:     append([]string(nil), tags...),
				Schedule: combined.UTC().Truncate(time.Second),
				Status:   queue.StatusQueued,
			}
			items = append(items, item)
			index++
		}
	}
	return items, nil
}

// expandSeeds cycles the seed pool to fill total titles, or synthesizes
// placeholder titles when the pool is empty.
func expandSeeds(seeds []string, total int, subject string) []string {
	if len(seeds) == 0 {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			subject = "Crazy Cat Fails"
		}
		subject = titleCaser.String(subject)
		titles := make([]string, total)
		for i := range titles {
			titles[i] = fmt.Sprintf("%s #%d", subject, i+1)
		}
		return titles
	}
	titles := make([]string, total)
	for i := range titles {
		titles[i] = seeds[i%len(seeds)]
	}
	return titles
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
