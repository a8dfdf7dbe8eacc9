package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Schedule.Timezone != "Asia/Almaty" {
		t.Fatalf("unexpected default timezone: %q", cfg.Schedule.Timezone)
	}
	if got := cfg.Schedule.Slots; len(got) != 3 || got[0] != "09:00" {
		t.Fatalf("unexpected default slots: %v", got)
	}
	if cfg.Uploader.SafetyWindowMinutes != 60 {
		t.Fatalf("unexpected safety window: %d", cfg.Uploader.SafetyWindowMinutes)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		"[schedule]",
		`timezone = "UTC"`,
		"days = 7",
		`slots = ["10:30"]`,
		"[uploader]",
		`privacy_status = "unlisted"`,
		"max_attempts = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Schedule.Timezone != "UTC" || cfg.Schedule.Days != 7 {
		t.Fatalf("schedule overrides not applied: %+v", cfg.Schedule)
	}
	if cfg.Uploader.PrivacyStatus != "unlisted" || cfg.Uploader.MaxAttempts != 2 {
		t.Fatalf("uploader overrides not applied: %+v", cfg.Uploader)
	}
	if cfg.QueuePath() != filepath.Join(dir, "data", "queue.json") {
		t.Fatalf("unexpected queue path: %q", cfg.QueuePath())
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[schedule]\ntimezone = \"Mars/Olympus\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLoadRejectsBadPrivacy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[uploader]\nprivacy_status = \"secret\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported privacy status")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[uploader]") {
		t.Fatal("sample config missing uploader section")
	}
}
