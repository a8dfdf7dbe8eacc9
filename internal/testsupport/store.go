package testsupport

import (
	"testing"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// NewStore opens a queue.Store backed by the test config's data directory.
func NewStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()
	return queue.NewStore(cfg.QueuePath(), logging.NewNop())
}

// NewItem builds a queued item for tests.
func NewItem(t testing.TB, title string, schedule time.Time) queue.Item {
	t.Helper()

	item := queue.Item{
		Title:    title,
		Schedule: schedule.UTC(),
		Status:   queue.StatusQueued,
	}
	item.Normalize()
	return item
}
