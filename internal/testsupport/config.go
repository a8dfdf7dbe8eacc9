package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Uploader.ClientID = "test-client"
	cfgVal.Uploader.ClientSecret = "test-secret"
	cfgVal.Uploader.RefreshToken = "test-refresh"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithCredentials overrides the uploader OAuth credentials on the test config.
func WithCredentials(clientID, clientSecret, refreshToken string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Uploader.ClientID = clientID
		b.cfg.Uploader.ClientSecret = clientSecret
		b.cfg.Uploader.RefreshToken = refreshToken
	}
}

// WithUploaderTimezone sets the uploader timezone on the test config.
func WithUploaderTimezone(zone string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Uploader.Timezone = zone
	}
}

// WithBatchLimit sets the per-run batch limit on the test config.
func WithBatchLimit(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.BatchLimit = limit
	}
}

// WithStubbedBinaries writes stub executables for the provided names,
// prepends them to PATH, and points the renderer commands at the stubs. If
// names is empty, the default external commands are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"clip-render", "clip-narrate"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
		b.cfg.Renderer.VideoCommand = filepath.Join(binDir, names[0])
		if len(names) > 1 {
			b.cfg.Renderer.NarrationCommand = filepath.Join(binDir, names[1])
		}
	}
}
