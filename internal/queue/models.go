package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a schedule item.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRendered Status = "rendered"
	StatusUploaded Status = "uploaded"
	StatusFailed   Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusRendered,
	StatusUploaded,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Fallback content applied to items that carry no caption lines or tags.
var (
	defaultLines = []string{"Hook", "Setup", "Twist"}
	defaultTags  = []string{"shorts", "cartoon", "comedy", "viral"}
)

// DefaultLines returns the placeholder caption beats for items without lines.
func DefaultLines() []string {
	return append([]string(nil), defaultLines...)
}

// DefaultTags returns the fallback tag set for items without tags.
func DefaultTags() []string {
	return append([]string(nil), defaultTags...)
}

// Item represents one planned publication.
type Item struct {
	Title    string
	Lines    []string
	Tags     []string
	Schedule time.Time // always an absolute UTC instant
	Status   Status
	Error    string // set only while Status is StatusFailed
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.Error = message
}

// SetStatus transitions the item and clears any stale error message.
func (i *Item) SetStatus(status Status) {
	i.Status = status
	if status != StatusFailed {
		i.Error = ""
	}
}

// IsDue reports whether the item should be picked up by a processing run.
func (i Item) IsDue(now time.Time) bool {
	return i.Status == StatusQueued && !i.Schedule.After(now)
}

// Normalize fills fallback lines/tags, collapses duplicate tags while
// preserving first-seen order, and coerces unknown statuses to queued.
func (i *Item) Normalize() {
	i.Title = strings.TrimSpace(i.Title)
	if len(i.Lines) == 0 {
		i.Lines = DefaultLines()
	}
	i.Tags = dedupTags(i.Tags)
	if len(i.Tags) == 0 {
		i.Tags = DefaultTags()
	}
	if _, ok := statusSet[i.Status]; !ok {
		i.Status = StatusQueued
	}
	if i.Status != StatusFailed {
		i.Error = ""
	}
	i.Schedule = i.Schedule.UTC()
}

func dedupTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
