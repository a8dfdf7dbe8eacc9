package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/manifest"
	"clipforge/internal/services"
)

// ResultStatus enumerates upload attempt outcomes.
type ResultStatus string

const (
	ResultUploaded ResultStatus = "uploaded"
	ResultFailed   ResultStatus = "failed"
	ResultDryRun   ResultStatus = "dry-run"
)

// Result is the outcome of one upload attempt.
type Result struct {
	Title   string       `json:"title"`
	Status  ResultStatus `json:"status"`
	VideoID string       `json:"videoId,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

const (
	backoffBase = 2 * time.Second
	backoffCap  = 60 * time.Second
)

// Orchestrator normalizes manifest entries and drives the transport with
// bounded retry.
type Orchestrator struct {
	cfg       *config.Config
	transport Transport
	ledger    *Ledger
	logger    *slog.Logger
	loc       *time.Location
	dryRun    bool

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithDryRun skips the transport call and reports dry-run results.
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) { o.dryRun = dryRun }
}

// WithLedger enables idempotency tracking for successful uploads.
func WithLedger(ledger *Ledger) Option {
	return func(o *Orchestrator) { o.ledger = ledger }
}

// WithClock overrides time functions for tests.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// NewOrchestrator builds an orchestrator for the configured uploader.
func NewOrchestrator(cfg *config.Config, transport Transport, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	loc, err := time.LoadLocation(cfg.Uploader.Timezone)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "timezone",
			fmt.Sprintf("unknown zone %q", cfg.Uploader.Timezone), err)
	}
	o := &Orchestrator{
		cfg:       cfg,
		transport: transport,
		logger:    logging.WithComponent(logger, "upload"),
		loc:       loc,
		now:       time.Now,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// UploadManifest processes each manifest entry in order. One bad entry
// produces one failed result and does not abort the rest; local artifacts
// are removed best-effort after every entry, except in a dry run where they
// must survive for the later real run.
func (o *Orchestrator) UploadManifest(ctx context.Context, entries []manifest.Entry) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		result := o.processEntry(ctx, entry)
		if result.Status != ResultDryRun {
			o.cleanupArtifacts(entry)
		}
		results = append(results, result)
	}
	return results
}

func (o *Orchestrator) processEntry(ctx context.Context, entry manifest.Entry) Result {
	combinedTags := MergeTags(entry.Tags, o.cfg.Uploader.DefaultTags)
	meta, err := NormalizeMetadata(entry.Title, entry.Description, combinedTags)
	if err != nil {
		return o.failure(entry.Title, err)
	}

	publishAt, err := o.resolvePublishAt(entry.Schedule)
	if err != nil {
		return o.failure(meta.Title, err)
	}
	publishAt = o.clampPublishAt(publishAt)

	// A scheduled publish time implies the platform holds the video private
	// and flips it public at the given instant.
	privacy := o.cfg.Uploader.PrivacyStatus
	if publishAt != nil {
		privacy = "private"
	}

	if o.ledger != nil {
		videoID, found, lookupErr := o.ledger.Lookup(meta.Title, entry.Schedule)
		if lookupErr != nil {
			o.logger.Warn("ledger lookup failed", logging.Error(lookupErr))
		} else if found {
			o.logger.Info("skipping already-uploaded entry",
				logging.String(logging.FieldTitle, meta.Title),
				logging.String("video_id", videoID),
			)
			return Result{Title: meta.Title, Status: ResultUploaded, VideoID: videoID}
		}
	}

	if o.dryRun {
		return Result{Title: meta.Title, Status: ResultDryRun}
	}

	if _, err := os.Stat(entry.VideoPath); err != nil {
		return o.failure(meta.Title, services.Wrap(services.ErrValidation, "upload", "video file",
			fmt.Sprintf("video file not found: %s", entry.VideoPath), err))
	}

	req := Request{
		VideoPath:     entry.VideoPath,
		Title:         meta.Title,
		Description:   meta.Description,
		Tags:          meta.Tags,
		CategoryID:    o.cfg.Uploader.CategoryID,
		PrivacyStatus: privacy,
		PublishAt:     publishAt,
	}
	resp, err := o.uploadWithRetry(ctx, req)
	if err != nil {
		return o.failure(meta.Title, err)
	}

	if o.ledger != nil {
		if err := o.ledger.Record(meta.Title, entry.Schedule, resp.VideoID); err != nil {
			o.logger.Warn("ledger record failed", logging.Error(err))
		}
	}

	o.logger.Info("uploaded entry",
		logging.String(logging.FieldTitle, meta.Title),
		logging.String("video_id", resp.VideoID),
	)
	return Result{Title: meta.Title, Status: ResultUploaded, VideoID: resp.VideoID}
}

// uploadWithRetry retries retriable transport failures with exponential
// backoff; non-retriable failures consume exactly one attempt.
func (o *Orchestrator) uploadWithRetry(ctx context.Context, req Request) (Response, error) {
	maxAttempts := o.cfg.Uploader.MaxAttempts
	delay := backoffBase
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := o.transport.Upload(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !services.IsRetriable(err) || attempt == maxAttempts {
			break
		}
		o.logger.Warn("retriable upload failure, backing off",
			logging.String(logging.FieldTitle, req.Title),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		o.sleep(delay)
		delay *= 2
		if delay > backoffCap {
			delay = backoffCap
		}
	}
	return Response{}, lastErr
}

// resolvePublishAt converts a stored schedule into an absolute UTC publish
// time. Values without an offset assume the configured uploader timezone.
func (o *Orchestrator) resolvePublishAt(schedule string) (*time.Time, error) {
	if schedule == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, schedule); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", schedule, o.loc); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	return nil, services.Wrap(services.ErrValidation, "upload", "schedule",
		fmt.Sprintf("invalid schedule value %q", schedule), nil)
}

// clampPublishAt pushes a publish time forward when it falls inside the
// platform's minimum safety window instead of failing the request.
func (o *Orchestrator) clampPublishAt(publishAt *time.Time) *time.Time {
	if publishAt == nil {
		return nil
	}
	minimum := o.now().UTC().Add(time.Duration(o.cfg.Uploader.SafetyWindowMinutes) * time.Minute)
	if publishAt.Before(minimum) {
		o.logger.Info("adjusting publish time to respect safety window",
			logging.Time("original", *publishAt),
			logging.Time("adjusted", minimum),
		)
		return &minimum
	}
	return publishAt
}

func (o *Orchestrator) failure(title string, err error) Result {
	o.logger.Error("upload entry failed",
		logging.String(logging.FieldTitle, title),
		logging.Error(err),
	)
	return Result{Title: title, Status: ResultFailed, Reason: err.Error()}
}

// cleanupArtifacts removes local render outputs. Failure to delete is
// logged, never propagated.
func (o *Orchestrator) cleanupArtifacts(entry manifest.Entry) {
	for _, path := range []string{entry.VideoPath, entry.AudioPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("failed to remove artifact", logging.String("path", path), logging.Error(err))
		}
	}
}
