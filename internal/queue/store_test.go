package queue_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

func newStore(t *testing.T) *queue.Store {
	t.Helper()
	return queue.NewStore(filepath.Join(t.TempDir(), "queue.json"), logging.NewNop())
}

func TestLoadMissingFileReturnsEmptyQueue(t *testing.T) {
	store := newStore(t)
	items, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty queue, got %d items", len(items))
	}
}

func TestLoadCorruptFileReturnsEmptyQueue(t *testing.T) {
	store := newStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	items, err := store.Load()
	if err != nil {
		t.Fatalf("Load should degrade, not fail: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty queue for corrupt file, got %d items", len(items))
	}
}

func TestLoadDropsMalformedEntries(t *testing.T) {
	store := newStore(t)
	payload := `{"items": [
        {"title": "Good", "schedule": "2026-09-01T09:00:00Z", "status": "queued"},
        {"title": "", "schedule": "2026-09-01T10:00:00Z"},
        {"title": "No Schedule"},
        {"title": "Bad Schedule", "schedule": "next tuesday"},
        {"title": "Odd Status", "schedule": "2026-09-01T08:00:00Z", "status": "exploded"}
    ]}`
	if err := os.WriteFile(store.Path(), []byte(payload), 0o644); err != nil {
		t.Fatalf("write queue file: %v", err)
	}

	items, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 surviving items, got %d", len(items))
	}
	// Sorted ascending by schedule, and the unknown status is coerced.
	if items[0].Title != "Odd Status" || items[0].Status != queue.StatusQueued {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Title != "Good" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestLoadFillsDefaultsAndDedupesTags(t *testing.T) {
	store := newStore(t)
	payload := `{"items": [
        {"title": "T", "schedule": "2026-09-01T09:00:00Z", "tags": ["b", "a", "b", " ", "a"]}
    ]}`
	if err := os.WriteFile(store.Path(), []byte(payload), 0o644); err != nil {
		t.Fatalf("write queue file: %v", err)
	}
	items, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if got := items[0].Tags; len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("expected first-seen-order dedup, got %v", got)
	}
	if len(items[0].Lines) != 3 {
		t.Fatalf("expected placeholder lines, got %v", items[0].Lines)
	}
}

func TestSaveSortsAndNaiveScheduleAssumedUTC(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	items := []queue.Item{
		{Title: "Later", Schedule: base.Add(2 * time.Hour), Status: queue.StatusQueued},
		{Title: "Earlier", Schedule: base, Status: queue.StatusQueued},
	}
	if err := store.Save(items); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded[0].Title != "Earlier" || loaded[1].Title != "Later" {
		t.Fatalf("expected schedule-sorted order, got %v then %v", loaded[0].Title, loaded[1].Title)
	}

	parsed, err := queue.ParseScheduleTime("2026-09-01T09:00:00")
	if err != nil {
		t.Fatalf("ParseScheduleTime failed: %v", err)
	}
	if !parsed.Equal(base) {
		t.Fatalf("naive schedule should be treated as UTC, got %s", parsed)
	}
}

func TestLoadSaveIsStable(t *testing.T) {
	store := newStore(t)
	items := []queue.Item{
		{
			Title:    "Stable",
			Lines:    []string{"one", "two"},
			Tags:     []string{"x", "y"},
			Schedule: time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC),
			Status:   queue.StatusFailed,
			Error:    "render exploded",
		},
		{
			Title:    "Other",
			Schedule: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
			Status:   queue.StatusUploaded,
		},
	}
	if err := store.Save(items); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read queue file: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Save(loaded); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	second, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read queue file: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("load-save round trip is not byte stable:\n%s\n---\n%s", first, second)
	}
}

func TestErrorClearedOnTransitionAwayFromFailed(t *testing.T) {
	item := queue.Item{
		Title:    "Retry Me",
		Schedule: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		Status:   queue.StatusFailed,
		Error:    "boom",
	}
	item.SetStatus(queue.StatusQueued)
	if item.Error != "" {
		t.Fatalf("expected error cleared, got %q", item.Error)
	}
}

func TestRetryFailed(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	items := []queue.Item{
		{Title: "A", Schedule: base, Status: queue.StatusFailed, Error: "boom"},
		{Title: "B", Schedule: base.Add(time.Hour), Status: queue.StatusUploaded},
	}
	if err := store.Save(items); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	count, err := store.RetryFailed()
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retried item, got %d", count)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded[0].Status != queue.StatusQueued || loaded[0].Error != "" {
		t.Fatalf("expected failed item re-queued with error cleared, got %+v", loaded[0])
	}
	if loaded[1].Status != queue.StatusUploaded {
		t.Fatalf("uploaded item should be untouched, got %+v", loaded[1])
	}
}

func TestClearByStatus(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	items := []queue.Item{
		{Title: "A", Schedule: base, Status: queue.StatusUploaded},
		{Title: "B", Schedule: base.Add(time.Hour), Status: queue.StatusQueued},
	}
	if err := store.Save(items); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := store.Clear(queue.StatusUploaded)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "B" {
		t.Fatalf("unexpected remaining items: %+v", loaded)
	}
}

func TestLockIsExclusive(t *testing.T) {
	store := newStore(t)
	release, err := store.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	other := queue.NewStore(store.Path(), logging.NewNop())
	if _, err := other.Lock(ctx); err == nil {
		t.Fatal("expected second lock attempt to fail while held")
	}
}
