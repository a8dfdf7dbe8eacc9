package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/manifest"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/upload"
)

// Producer renders one queue item into an uploadable artifact.
type Producer interface {
	Produce(ctx context.Context, job render.Job) (manifest.Entry, error)
}

// Uploader pushes produced artifacts to the platform.
type Uploader interface {
	UploadManifest(ctx context.Context, entries []manifest.Entry) []upload.Result
}

// Options controls a single processing run.
type Options struct {
	// Limit caps how many due items one run may pick.
	Limit int
	// Upload pushes each rendered item immediately instead of stopping at
	// the manifest hand-off.
	Upload bool
	// DryRun reports what would be uploaded without calling the platform.
	DryRun bool
}

// ItemOutcome records the final state of one rendered item, including the
// results of its upload hand-off when one happened.
type ItemOutcome struct {
	Title    string
	Schedule time.Time
	Status   queue.Status
	Uploads  []upload.Result
}

// Summary reports what a processing run did: how many due items were picked,
// an outcome record per rendered item, and the failures collected along the
// way.
type Summary struct {
	Picked   int
	Produced []ItemOutcome
	Errors   []string
}

// Manager drives the load-select-process-persist sequence over the durable
// queue.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	producer Producer
	uploader Uploader
	logger   *slog.Logger

	now func() time.Time
}

// New builds a manager. The uploader may be nil when runs never upload.
func New(cfg *config.Config, store *queue.Store, producer Producer, uploader Uploader, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		producer: producer,
		uploader: uploader,
		logger:   logging.WithComponent(logger, "manager"),
		now:      time.Now,
	}
}

// WithClock overrides the time source for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// ProcessDue picks due queued items in schedule order up to the limit and
// walks each through render and optional upload. The queue is persisted after
// every item so an interrupted run loses at most the item in flight. One
// item's failure marks that item failed and does not stop the rest.
func (m *Manager) ProcessDue(ctx context.Context, opts Options) (Summary, error) {
	if opts.Limit <= 0 {
		return Summary{}, nil
	}

	runLogger := m.logger.With(logging.String(logging.FieldRunID, uuid.NewString()[:8]))

	release, err := m.store.Lock(ctx)
	if err != nil {
		return Summary{}, err
	}
	defer release()

	items, err := m.store.Load()
	if err != nil {
		return Summary{}, err
	}
	if len(items) == 0 {
		runLogger.Info("queue is empty, nothing to process")
		return Summary{}, nil
	}

	// A misconfigured uploader fails the whole batch up front, before any
	// item is rendered or any queue state changes.
	if opts.Upload && !opts.DryRun {
		if err := upload.ValidateEnv(m.cfg); err != nil {
			return Summary{}, err
		}
	}

	now := m.now().UTC()
	picked := make([]int, 0, opts.Limit)
	for i := range items {
		if items[i].Status != queue.StatusQueued || !items[i].IsDue(now) {
			continue
		}
		picked = append(picked, i)
		if len(picked) >= opts.Limit {
			break
		}
	}
	if len(picked) == 0 {
		runLogger.Info("no due items", logging.Time("now", now))
		return Summary{}, nil
	}

	summary := Summary{Picked: len(picked)}
	produced := make([]manifest.Entry, 0, len(picked))

	for _, idx := range picked {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item := &items[idx]
		itemLogger := runLogger.With(
			logging.String(logging.FieldTitle, item.Title),
			logging.Time(logging.FieldSchedule, item.Schedule),
		)

		entry, err := m.produce(ctx, item, itemLogger)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", item.Title, err))
			if saveErr := m.store.Save(items); saveErr != nil {
				return summary, saveErr
			}
			continue
		}

		produced = append(produced, entry)
		if err := manifest.Write(m.cfg.ManifestPath(), produced); err != nil {
			itemLogger.Error("failed to write manifest", logging.Error(err))
		}

		outcome := ItemOutcome{Title: item.Title, Schedule: item.Schedule}
		// A dry run stops at the manifest hand-off so the rendered artifacts
		// survive for a later real run.
		if opts.Upload && !opts.DryRun {
			results, failure := m.processUpload(ctx, item, entry, itemLogger)
			outcome.Uploads = results
			if failure != "" {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", item.Title, failure))
			}
		}
		outcome.Status = item.Status
		summary.Produced = append(summary.Produced, outcome)

		if err := m.store.Save(items); err != nil {
			return summary, err
		}
	}

	runLogger.Info("run complete",
		logging.Int("picked", summary.Picked),
		logging.Int("produced", len(summary.Produced)),
		logging.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

func (m *Manager) produce(ctx context.Context, item *queue.Item, logger *slog.Logger) (manifest.Entry, error) {
	job := render.Job{
		Title:    item.Title,
		Lines:    item.Lines,
		Tags:     item.Tags,
		Schedule: item.Schedule,
	}
	entry, err := m.producer.Produce(ctx, job)
	if err != nil {
		logger.Error("render failed", logging.Error(err))
		item.SetFailed(err.Error())
		return manifest.Entry{}, err
	}
	item.SetStatus(queue.StatusRendered)
	logger.Info("rendered item", logging.String("video", entry.VideoPath))
	return entry, nil
}

// processUpload pushes one produced entry and folds the results back into the
// item's status. It returns the upload results and, when the item ended up
// failed, a detail string for the run's error list.
func (m *Manager) processUpload(ctx context.Context, item *queue.Item, entry manifest.Entry, logger *slog.Logger) ([]upload.Result, string) {
	if m.uploader == nil {
		logger.Warn("upload requested but no uploader configured")
		return nil, ""
	}
	results := m.uploader.UploadManifest(ctx, []manifest.Entry{entry})
	if len(results) == 0 {
		return nil, ""
	}

	failed := make([]upload.Result, 0, len(results))
	uploaded := 0
	for _, result := range results {
		switch result.Status {
		case upload.ResultUploaded:
			uploaded++
		case upload.ResultFailed:
			failed = append(failed, result)
		}
	}

	switch {
	case len(failed) > 0:
		detail, err := json.Marshal(failed)
		if err != nil {
			detail = []byte(failed[0].Reason)
		}
		item.SetFailed(string(detail))
		logger.Error("upload failed", logging.String("detail", string(detail)))
		return results, string(detail)
	case uploaded == len(results):
		item.SetStatus(queue.StatusUploaded)
		logger.Info("uploaded item", logging.String("video_id", results[0].VideoID))
	}
	return results, ""
}
