// Package manifest reads and writes the hand-off file listing freshly
// rendered artifacts awaiting upload. The manifest is not durable queue
// state; it is safe to regenerate from another production run.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"clipforge/internal/fileutil"
)

// Entry describes one produced artifact ready for upload.
type Entry struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	VideoPath   string   `json:"video_path"`
	AudioPath   string   `json:"audio_path"`
	Schedule    string   `json:"schedule"`
}

type envelope struct {
	Items []Entry `json:"items"`
}

// Load reads manifest entries from path. A missing file yields an empty
// manifest; entries without a title or video path are dropped.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	entries := make([]Entry, 0, len(env.Items))
	for _, entry := range env.Items {
		if entry.Title == "" || entry.VideoPath == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Write persists entries to path atomically.
func Write(path string, entries []Entry) error {
	data, err := json.MarshalIndent(envelope{Items: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(path, data, ".manifest-*.json"); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
