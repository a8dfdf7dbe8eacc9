package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// CommandNarrator shells out to the configured narration command. The command
// receives the narration text on stdin and the output path as --out.
type CommandNarrator struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandNarrator builds a narrator from renderer configuration.
func NewCommandNarrator(cfg *config.Config, logger *slog.Logger) *CommandNarrator {
	return &CommandNarrator{
		command: cfg.Renderer.NarrationCommand,
		timeout: time.Duration(cfg.Renderer.TimeoutSeconds) * time.Second,
		logger:  logging.WithComponent(logger, "narrator"),
	}
}

func (n *CommandNarrator) Narrate(ctx context.Context, lines []string, outPath string) error {
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return services.Wrap(services.ErrValidation, "narrator", "narrate", "no narration text", nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, n.command, "--out", outPath)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	n.logger.Debug("launching narration command", logging.String("command", n.command), logging.String("out", outPath))
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "narrator", "narrate", tailOf(stderr.String()), err)
	}
	return verifyOutput("narrator", outPath)
}

// CommandRenderer shells out to the configured video render command.
type CommandRenderer struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandRenderer builds a renderer from renderer configuration.
func NewCommandRenderer(cfg *config.Config, logger *slog.Logger) *CommandRenderer {
	return &CommandRenderer{
		command: cfg.Renderer.VideoCommand,
		timeout: time.Duration(cfg.Renderer.TimeoutSeconds) * time.Second,
		logger:  logging.WithComponent(logger, "renderer"),
	}
}

func (r *CommandRenderer) Render(ctx context.Context, job Job, audioPath, outPath string) error {
	if strings.TrimSpace(job.Title) == "" {
		return services.Wrap(services.ErrValidation, "renderer", "render", "title must not be empty", nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{
		"--title", job.Title,
		"--audio", audioPath,
		"--out", outPath,
	}
	for _, line := range job.Lines {
		args = append(args, "--line", line)
	}
	if len(job.Tags) > 0 {
		args = append(args, "--tags", strings.Join(job.Tags, ","))
	}

	cmd := exec.CommandContext(runCtx, r.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("launching render command",
		logging.String("command", r.command),
		logging.String(logging.FieldTitle, job.Title),
		logging.String("out", outPath),
	)
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "renderer", "render", tailOf(stderr.String()), err)
	}
	return verifyOutput("renderer", outPath)
}

func verifyOutput(component, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, component, "verify output", fmt.Sprintf("output %s missing", path), err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, component, "verify output", fmt.Sprintf("output %s is empty", path), nil)
	}
	return nil
}

// tailOf keeps the last few lines of tool stderr for error messages.
func tailOf(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "command failed"
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
