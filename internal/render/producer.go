package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/logging"
	"clipforge/internal/manifest"
)

// Producer drives narration and rendering for one item and emits the
// manifest entry the upload orchestrator consumes.
type Producer struct {
	narrator   Narrator
	renderer   Renderer
	stagingDir string
	logger     *slog.Logger
}

// NewProducer wires a narrator and renderer against a staging directory.
func NewProducer(narrator Narrator, renderer Renderer, stagingDir string, logger *slog.Logger) *Producer {
	return &Producer{
		narrator:   narrator,
		renderer:   renderer,
		stagingDir: stagingDir,
		logger:     logging.WithComponent(logger, "producer"),
	}
}

// Produce narrates and renders a single job into the staging directory.
func (p *Producer) Produce(ctx context.Context, job Job) (manifest.Entry, error) {
	stem := fmt.Sprintf("%s-%s", Slug(job.Title), uuid.NewString()[:8])
	audioPath := filepath.Join(p.stagingDir, stem+".wav")
	videoPath := filepath.Join(p.stagingDir, stem+".mp4")

	if err := p.narrator.Narrate(ctx, job.Lines, audioPath); err != nil {
		return manifest.Entry{}, err
	}
	if err := p.renderer.Render(ctx, job, audioPath, videoPath); err != nil {
		return manifest.Entry{}, err
	}

	p.logger.Info("produced item",
		logging.String(logging.FieldTitle, job.Title),
		logging.String("video", videoPath),
	)
	return manifest.Entry{
		Title:       job.Title,
		Description: strings.Join(job.Lines, "\n"),
		Tags:        append([]string(nil), job.Tags...),
		VideoPath:   videoPath,
		AudioPath:   audioPath,
		Schedule:    job.Schedule.UTC().Format(time.RFC3339),
	}, nil
}
