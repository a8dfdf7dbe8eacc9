package upload

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger records successful uploads keyed on title and schedule so a
// regenerated manifest does not publish the same item twice. It is a local
// idempotency marker, not a delivery guarantee.
type Ledger struct {
	db *sql.DB
}

// OpenLedger initializes or connects to the upload ledger database.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	schema := `CREATE TABLE IF NOT EXISTS uploads (
        title TEXT NOT NULL,
        schedule TEXT NOT NULL,
        video_id TEXT NOT NULL,
        uploaded_at TEXT NOT NULL,
        PRIMARY KEY (title, schedule)
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Lookup returns the recorded video ID for a title/schedule pair.
func (l *Ledger) Lookup(title, schedule string) (string, bool, error) {
	row := l.db.QueryRow(`SELECT video_id FROM uploads WHERE title = ? AND schedule = ?`, title, schedule)
	var videoID string
	if err := row.Scan(&videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup upload: %w", err)
	}
	return videoID, true, nil
}

// Record stores a successful upload, replacing any stale entry.
func (l *Ledger) Record(title, schedule, videoID string) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO uploads (title, schedule, video_id, uploaded_at) VALUES (?, ?, ?, ?)`,
		title, schedule, videoID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}
