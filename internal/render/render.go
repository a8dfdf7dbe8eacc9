// Package render produces video and narration artifacts for schedule items
// by driving external commands. Compositing and speech synthesis themselves
// are opaque collaborators; this package owns the hand-off contract around
// them: staging paths, output verification, and manifest entries.
package render

import (
	"context"
	"strings"
	"time"
)

// Job carries the structured topic data a renderer needs.
type Job struct {
	Title    string
	Lines    []string
	Tags     []string
	Schedule time.Time
}

// Artifact describes the files produced for one job.
type Artifact struct {
	VideoPath string
	AudioPath string
}

// Narrator produces an audio narration file from caption lines.
type Narrator interface {
	Narrate(ctx context.Context, lines []string, outPath string) error
}

// Renderer produces a finished vertical video for a job.
type Renderer interface {
	Render(ctx context.Context, job Job, audioPath, outPath string) error
}

// Slug converts a title into a filesystem-safe fragment.
func Slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 48 {
		slug = strings.Trim(slug[:48], "-")
	}
	return slug
}
