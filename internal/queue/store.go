package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
)

// Store manages queue persistence backed by a sorted JSON file.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock
}

type fileEnvelope struct {
	Items []itemJSON `json:"items"`
}

type itemJSON struct {
	Title    string   `json:"title"`
	Schedule string   `json:"schedule"`
	Status   string   `json:"status"`
	Lines    []string `json:"lines"`
	Tags     []string `json:"tags"`
	Error    string   `json:"error,omitempty"`
}

// NewStore creates a store for the queue file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.WithComponent(logger, "queue"),
		lock:   flock.New(path + ".lock"),
	}
}

// Path returns the queue file location.
func (s *Store) Path() string {
	return s.path
}

// Lock acquires the advisory file lock guarding the load-select-persist
// sequence against concurrent triggers from other processes. The returned
// release function must be called when the sequence completes.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue directory: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire queue lock: %w", err)
	}
	if !ok {
		return nil, errors.New("queue lock held by another process")
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release queue lock", logging.Error(err))
		}
	}, nil
}

// Load reads the queue file and returns items sorted ascending by schedule.
// A missing file yields an empty queue. Corrupt content is logged and also
// yields an empty queue; individual malformed entries are dropped silently.
func (s *Store) Load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read queue file: %w", err)
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Warn("queue file is not valid JSON, starting with empty queue",
			logging.String("path", s.path), logging.Error(err))
		return nil, nil
	}

	items := make([]Item, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		item, ok := decodeItem(raw)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	sortItems(items)
	return items, nil
}

// Save re-serializes the full set sorted by schedule and writes it atomically
// so no partial file is ever observable by a concurrent reader.
func (s *Store) Save(items []Item) error {
	sorted := make([]Item, 0, len(items))
	for _, item := range items {
		item.Normalize()
		if item.Title == "" || item.Schedule.IsZero() {
			continue
		}
		sorted = append(sorted, item)
	}
	sortItems(sorted)

	envelope := fileEnvelope{Items: make([]itemJSON, 0, len(sorted))}
	for _, item := range sorted {
		envelope.Items = append(envelope.Items, encodeItem(item))
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(s.path, data, ".queue-*.json"); err != nil {
		return fmt.Errorf("write queue file: %w", err)
	}
	return nil
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats() (map[Status]int, error) {
	items, err := s.Load()
	if err != nil {
		return nil, err
	}
	stats := make(map[Status]int, len(allStatuses))
	for _, item := range items {
		stats[item.Status]++
	}
	return stats, nil
}

// RetryFailed moves failed items back to queued so the next run picks them
// up, and reports how many transitioned.
func (s *Store) RetryFailed() (int, error) {
	items, err := s.Load()
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range items {
		if items[i].Status == StatusFailed {
			items[i].SetStatus(StatusQueued)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return count, s.Save(items)
}

// Clear removes all items, or only those matching the provided statuses.
func (s *Store) Clear(statuses ...Status) (int, error) {
	items, err := s.Load()
	if err != nil {
		return 0, err
	}
	if len(statuses) == 0 {
		if err := s.Save(nil); err != nil {
			return 0, err
		}
		return len(items), nil
	}
	match := make(map[Status]struct{}, len(statuses))
	for _, status := range statuses {
		match[status] = struct{}{}
	}
	kept := items[:0]
	removed := 0
	for _, item := range items {
		if _, ok := match[item.Status]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.Save(kept)
}

func decodeItem(raw itemJSON) (Item, bool) {
	title := raw.Title
	scheduleStr := raw.Schedule
	if title == "" || scheduleStr == "" {
		return Item{}, false
	}
	schedule, err := ParseScheduleTime(scheduleStr)
	if err != nil {
		return Item{}, false
	}

	status, ok := ParseStatus(raw.Status)
	if !ok {
		status = StatusQueued
	}

	item := Item{
		Title:    title,
		Lines:    raw.Lines,
		Tags:     raw.Tags,
		Schedule: schedule,
		Status:   status,
		Error:    raw.Error,
	}
	item.Normalize()
	if item.Title == "" {
		return Item{}, false
	}
	return item, true
}

func encodeItem(item Item) itemJSON {
	return itemJSON{
		Title:    item.Title,
		Schedule: item.Schedule.UTC().Format(time.RFC3339),
		Status:   string(item.Status),
		Lines:    item.Lines,
		Tags:     item.Tags,
		Error:    item.Error,
	}
}

// ParseScheduleTime parses a stored schedule value. Values without an offset
// are assumed to be UTC; anything else is rejected.
func ParseScheduleTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid schedule value %q", value)
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Schedule.Before(items[j].Schedule)
	})
}
