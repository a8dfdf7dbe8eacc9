package manager_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/manager"
	"clipforge/internal/manifest"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/testsupport"
	"clipforge/internal/upload"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeProducer struct {
	failTitles map[string]string
	produced   []string
}

func (f *fakeProducer) Produce(_ context.Context, job render.Job) (manifest.Entry, error) {
	if reason, ok := f.failTitles[job.Title]; ok {
		return manifest.Entry{}, errors.New(reason)
	}
	f.produced = append(f.produced, job.Title)
	return manifest.Entry{
		Title:     job.Title,
		Tags:      job.Tags,
		VideoPath: filepath.Join("/tmp", render.Slug(job.Title)+".mp4"),
		Schedule:  job.Schedule.UTC().Format(time.RFC3339),
	}, nil
}

type fakeUploader struct {
	results func(entry manifest.Entry) []upload.Result
	calls   int
}

func (f *fakeUploader) UploadManifest(_ context.Context, entries []manifest.Entry) []upload.Result {
	f.calls++
	out := make([]upload.Result, 0, len(entries))
	for _, entry := range entries {
		if f.results != nil {
			out = append(out, f.results(entry)...)
			continue
		}
		out = append(out, upload.Result{Title: entry.Title, Status: upload.ResultUploaded, VideoID: "vid-" + render.Slug(entry.Title)})
	}
	return out
}

func seedQueue(t *testing.T, cfg *config.Config, items []queue.Item) *queue.Store {
	t.Helper()
	store := testsupport.NewStore(t, cfg)
	if err := store.Save(items); err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	return store
}

func summaryIsZero(s manager.Summary) bool {
	return s.Picked == 0 && len(s.Produced) == 0 && len(s.Errors) == 0
}

func dueItem(title string, offset time.Duration) queue.Item {
	item := queue.Item{Title: title, Schedule: testNow.Add(offset), Status: queue.StatusQueued}
	item.Normalize()
	return item
}

func newManager(cfg *config.Config, store *queue.Store, producer manager.Producer, uploader manager.Uploader) *manager.Manager {
	return manager.New(cfg, store, producer, uploader, logging.NewNop()).
		WithClock(func() time.Time { return testNow })
}

func TestProcessDuePicksEarliestFirstUpToLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := seedQueue(t, cfg, []queue.Item{
		dueItem("Third", -1*time.Hour),
		dueItem("First", -3*time.Hour),
		dueItem("Second", -2*time.Hour),
		dueItem("Future", 2*time.Hour),
	})
	producer := &fakeProducer{}

	summary, err := newManager(cfg, store, producer, nil).ProcessDue(context.Background(), manager.Options{Limit: 2})
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if summary.Picked != 2 || len(summary.Produced) != 2 || len(summary.Errors) != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(producer.produced) != 2 || producer.produced[0] != "First" || producer.produced[1] != "Second" {
		t.Fatalf("produced = %v", producer.produced)
	}
	for i, want := range []string{"First", "Second"} {
		outcome := summary.Produced[i]
		if outcome.Title != want || outcome.Status != queue.StatusRendered || outcome.Schedule.IsZero() {
			t.Fatalf("outcome[%d] = %+v", i, outcome)
		}
	}

	items, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	statuses := map[string]queue.Status{}
	for _, item := range items {
		statuses[item.Title] = item.Status
	}
	if statuses["First"] != queue.StatusRendered || statuses["Second"] != queue.StatusRendered {
		t.Fatalf("statuses = %v", statuses)
	}
	if statuses["Third"] != queue.StatusQueued || statuses["Future"] != queue.StatusQueued {
		t.Fatalf("unpicked items changed: %v", statuses)
	}
}

func TestProcessDueEmptyQueueAndZeroLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)
	producer := &fakeProducer{}
	mgr := newManager(cfg, store, producer, nil)

	summary, err := mgr.ProcessDue(context.Background(), manager.Options{Limit: 5})
	if err != nil || !summaryIsZero(summary) {
		t.Fatalf("empty queue: summary=%+v err=%v", summary, err)
	}

	summary, err = mgr.ProcessDue(context.Background(), manager.Options{Limit: 0})
	if err != nil || !summaryIsZero(summary) {
		t.Fatalf("zero limit: summary=%+v err=%v", summary, err)
	}
}

func TestProcessDueIsolatesRenderFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := seedQueue(t, cfg, []queue.Item{
		dueItem("Bad", -2*time.Hour),
		dueItem("Good", -1*time.Hour),
	})
	producer := &fakeProducer{failTitles: map[string]string{"Bad": "renderer exploded"}}

	summary, err := newManager(cfg, store, producer, nil).ProcessDue(context.Background(), manager.Options{Limit: 10})
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if summary.Picked != 2 || len(summary.Produced) != 1 || len(summary.Errors) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if !strings.Contains(summary.Errors[0], "Bad") || !strings.Contains(summary.Errors[0], "renderer exploded") {
		t.Fatalf("error record = %q", summary.Errors[0])
	}

	items, _ := store.Load()
	for _, item := range items {
		switch item.Title {
		case "Bad":
			if item.Status != queue.StatusFailed || !strings.Contains(item.Error, "renderer exploded") {
				t.Fatalf("bad item = %+v", item)
			}
		case "Good":
			if item.Status != queue.StatusRendered || item.Error != "" {
				t.Fatalf("good item = %+v", item)
			}
		}
	}
}

func TestProcessDueValidatesUploadEnvBeforeAnyItem(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCredentials("", "", ""))
	store := seedQueue(t, cfg, []queue.Item{dueItem("Item", -1 * time.Hour)})
	producer := &fakeProducer{}
	uploader := &fakeUploader{}

	_, err := newManager(cfg, store, producer, uploader).ProcessDue(context.Background(), manager.Options{Limit: 1, Upload: true})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if len(producer.produced) != 0 {
		t.Fatalf("items rendered despite aborted batch: %v", producer.produced)
	}

	items, _ := store.Load()
	if items[0].Status != queue.StatusQueued {
		t.Fatalf("queue mutated: %+v", items[0])
	}
}

func TestProcessDueUploadsRenderedItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := seedQueue(t, cfg, []queue.Item{dueItem("Item", -1 * time.Hour)})
	uploader := &fakeUploader{}

	summary, err := newManager(cfg, store, &fakeProducer{}, uploader).ProcessDue(context.Background(), manager.Options{Limit: 1, Upload: true})
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(summary.Errors) != 0 || uploader.calls != 1 {
		t.Fatalf("summary=%+v calls=%d", summary, uploader.calls)
	}
	outcome := summary.Produced[0]
	if outcome.Status != queue.StatusUploaded || len(outcome.Uploads) != 1 || outcome.Uploads[0].VideoID == "" {
		t.Fatalf("outcome = %+v", outcome)
	}

	items, _ := store.Load()
	if items[0].Status != queue.StatusUploaded {
		t.Fatalf("status = %s", items[0].Status)
	}
}

func TestProcessDueMarksUploadFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := seedQueue(t, cfg, []queue.Item{dueItem("Item", -1 * time.Hour)})
	uploader := &fakeUploader{results: func(entry manifest.Entry) []upload.Result {
		return []upload.Result{{Title: entry.Title, Status: upload.ResultFailed, Reason: "quota exceeded"}}
	}}

	summary, err := newManager(cfg, store, &fakeProducer{}, uploader).ProcessDue(context.Background(), manager.Options{Limit: 1, Upload: true})
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "quota exceeded") {
		t.Fatalf("summary = %+v", summary)
	}
	outcome := summary.Produced[0]
	if outcome.Status != queue.StatusFailed || len(outcome.Uploads) != 1 || outcome.Uploads[0].Status != upload.ResultFailed {
		t.Fatalf("outcome = %+v", outcome)
	}

	items, _ := store.Load()
	if items[0].Status != queue.StatusFailed || !strings.Contains(items[0].Error, "quota exceeded") {
		t.Fatalf("item = %+v", items[0])
	}
}

func TestProcessDueDryRunStopsAtManifestHandOff(t *testing.T) {
	// Missing credentials must not abort a dry run.
	cfg := testsupport.NewConfig(t, testsupport.WithCredentials("", "", ""))
	store := seedQueue(t, cfg, []queue.Item{dueItem("Item", -1 * time.Hour)})
	uploader := &fakeUploader{}

	summary, err := newManager(cfg, store, &fakeProducer{}, uploader).ProcessDue(context.Background(), manager.Options{Limit: 1, Upload: true, DryRun: true})
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	// The uploader must never see a dry run; its cleanup would destroy the
	// just-rendered artifacts while the item stays rendered.
	if uploader.calls != 0 {
		t.Fatalf("uploader called %d times in dry run", uploader.calls)
	}
	outcome := summary.Produced[0]
	if outcome.Status != queue.StatusRendered || len(outcome.Uploads) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}

	items, _ := store.Load()
	if items[0].Status != queue.StatusRendered {
		t.Fatalf("status = %s", items[0].Status)
	}
}

func TestProcessDueWritesManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var seed []queue.Item
	for i := 1; i <= 3; i++ {
		seed = append(seed, dueItem(fmt.Sprintf("Item %d", i), -time.Duration(4-i)*time.Hour))
	}
	store := seedQueue(t, cfg, seed)

	if _, err := newManager(cfg, store, &fakeProducer{}, nil).ProcessDue(context.Background(), manager.Options{Limit: 3}); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}

	entries, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		t.Fatalf("manifest.Load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("manifest entries = %d", len(entries))
	}
	if entries[0].Title != "Item 1" {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
}
