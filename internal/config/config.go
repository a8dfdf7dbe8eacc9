package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Schedule contains month-plan generation settings.
type Schedule struct {
	Timezone       string   `toml:"timezone"`
	Days           int      `toml:"days"`
	Slots          []string `toml:"slots"`
	DefaultLines   []string `toml:"default_lines"`
	DefaultTags    []string `toml:"default_tags"`
	DefaultSubject string   `toml:"default_subject"`
}

// Renderer contains the external render and narration commands.
type Renderer struct {
	VideoCommand     string `toml:"video_command"`
	NarrationCommand string `toml:"narration_command"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	MinFreeGiB       int    `toml:"min_free_gib"`
}

// Uploader contains YouTube upload settings and OAuth credentials.
type Uploader struct {
	CategoryID          string   `toml:"category_id"`
	PrivacyStatus       string   `toml:"privacy_status"`
	DefaultTags         []string `toml:"default_tags"`
	Timezone            string   `toml:"timezone"`
	SafetyWindowMinutes int      `toml:"safety_window_minutes"`
	MaxAttempts         int      `toml:"max_attempts"`
	ClientID            string   `toml:"client_id"`
	ClientSecret        string   `toml:"client_secret"`
	RefreshToken        string   `toml:"refresh_token"`
	TokenURL            string   `toml:"token_url"`
	UploadURL           string   `toml:"upload_url"`
}

// Workflow contains daemon timing and batch settings.
type Workflow struct {
	PollInterval int `toml:"poll_interval"`
	BatchLimit   int `toml:"batch_limit"`
}

// Notifications contains optional push notification settings. An empty topic
// disables notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Configuration sections by subsystem:
//   - Paths: data, staging, and log directories
//   - Schedule: timezone, slots, and defaults for month-plan generation
//   - Renderer: external render/narration commands
//   - Uploader: YouTube metadata defaults, publish policy, and credentials
//   - Workflow: daemon polling interval and batch limit
//   - Notifications: optional ntfy push notifications
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Schedule      Schedule      `toml:"schedule"`
	Renderer      Renderer      `toml:"renderer"`
	Uploader      Uploader      `toml:"uploader"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean result
// reports whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueuePath returns the location of the durable schedule queue file.
func (c *Config) QueuePath() string {
	return filepath.Join(c.Paths.DataDir, "queue.json")
}

// ManifestPath returns the location of the render hand-off manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.DataDir, "manifest.json")
}

// LedgerPath returns the location of the upload idempotency ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.DataDir, "uploads.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
