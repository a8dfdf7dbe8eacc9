package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSchedule()
	c.normalizeUploader()
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Timezone = strings.TrimSpace(c.Schedule.Timezone)
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = defaultScheduleTimezone
	}
	if c.Schedule.Days <= 0 {
		c.Schedule.Days = defaultScheduleDays
	}
	c.Schedule.Slots = trimStrings(c.Schedule.Slots)
	if len(c.Schedule.Slots) == 0 {
		c.Schedule.Slots = defaultSlots()
	}
	c.Schedule.DefaultLines = trimStrings(c.Schedule.DefaultLines)
	if len(c.Schedule.DefaultLines) == 0 {
		c.Schedule.DefaultLines = defaultLines()
	}
	c.Schedule.DefaultTags = trimStrings(c.Schedule.DefaultTags)
	if len(c.Schedule.DefaultTags) == 0 {
		c.Schedule.DefaultTags = defaultScheduleTags()
	}
	c.Schedule.DefaultSubject = strings.TrimSpace(c.Schedule.DefaultSubject)
	if c.Schedule.DefaultSubject == "" {
		c.Schedule.DefaultSubject = defaultSubject
	}
}

func (c *Config) normalizeUploader() {
	u := &c.Uploader
	u.CategoryID = strings.TrimSpace(u.CategoryID)
	if u.CategoryID == "" {
		u.CategoryID = defaultCategoryID
	}
	u.PrivacyStatus = strings.ToLower(strings.TrimSpace(u.PrivacyStatus))
	if u.PrivacyStatus == "" {
		u.PrivacyStatus = defaultPrivacyStatus
	}
	u.DefaultTags = trimStrings(u.DefaultTags)
	u.Timezone = strings.TrimSpace(u.Timezone)
	if u.Timezone == "" {
		u.Timezone = defaultUploaderTimezone
	}
	if u.SafetyWindowMinutes <= 0 {
		u.SafetyWindowMinutes = defaultSafetyWindowMinutes
	}
	if u.MaxAttempts <= 0 {
		u.MaxAttempts = defaultMaxAttempts
	}
	u.TokenURL = strings.TrimSpace(u.TokenURL)
	if u.TokenURL == "" {
		u.TokenURL = defaultTokenURL
	}
	u.UploadURL = strings.TrimSpace(u.UploadURL)
	if u.UploadURL == "" {
		u.UploadURL = defaultUploadURL
	}

	// Credentials may come from the environment instead of the config file.
	if u.ClientID == "" {
		u.ClientID = strings.TrimSpace(os.Getenv("YT_CLIENT_ID"))
	}
	if u.ClientSecret == "" {
		u.ClientSecret = strings.TrimSpace(os.Getenv("YT_CLIENT_SECRET"))
	}
	if u.RefreshToken == "" {
		u.RefreshToken = strings.TrimSpace(os.Getenv("YT_REFRESH_TOKEN"))
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = defaultPollInterval
	}
	if c.Workflow.BatchLimit <= 0 {
		c.Workflow.BatchLimit = defaultBatchLimit
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
