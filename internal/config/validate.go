package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateUploader(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSchedule() error {
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: unknown zone %q", c.Schedule.Timezone)
	}
	if c.Schedule.Days <= 0 {
		return errors.New("schedule.days must be positive")
	}
	if len(c.Schedule.Slots) == 0 {
		return errors.New("schedule.slots must not be empty")
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if strings.TrimSpace(c.Renderer.VideoCommand) == "" {
		return errors.New("renderer.video_command must be set")
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		return errors.New("renderer.timeout_seconds must be positive")
	}
	if c.Renderer.MinFreeGiB < 0 {
		return errors.New("renderer.min_free_gib must not be negative")
	}
	return nil
}

func (c *Config) validateUploader() error {
	switch c.Uploader.PrivacyStatus {
	case "private", "public", "unlisted":
	default:
		return fmt.Errorf("uploader.privacy_status: unsupported value %q", c.Uploader.PrivacyStatus)
	}
	if _, err := time.LoadLocation(c.Uploader.Timezone); err != nil {
		return fmt.Errorf("uploader.timezone: unknown zone %q", c.Uploader.Timezone)
	}
	if c.Uploader.SafetyWindowMinutes <= 0 {
		return errors.New("uploader.safety_window_minutes must be positive")
	}
	if c.Uploader.MaxAttempts <= 0 {
		return errors.New("uploader.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollInterval <= 0 {
		return errors.New("workflow.poll_interval must be positive")
	}
	if c.Workflow.BatchLimit <= 0 {
		return errors.New("workflow.batch_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
