package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace_NotEnforced(t *testing.T) {
	result := CheckFreeSpace("test", t.TempDir(), 0)
	if !result.Passed {
		t.Fatalf("expected pass when minimum is disabled, got: %s", result.Detail)
	}
}

func TestCheckFreeSpace_ImpossibleMinimum(t *testing.T) {
	// No test machine has an exbibyte free.
	result := CheckFreeSpace("test", t.TempDir(), 1<<30)
	if result.Passed {
		t.Fatal("expected failure for absurd minimum")
	}
}

func TestCheckCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Uploader.ClientID = "id"
	cfg.Uploader.ClientSecret = "secret"
	cfg.Uploader.RefreshToken = "token"
	if result := CheckCredentials(&cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}

	cfg.Uploader.RefreshToken = ""
	if result := CheckCredentials(&cfg); result.Passed {
		t.Fatal("expected failure for missing refresh token")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, Options{})
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsCredentialsWithoutUpload(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Renderer.MinFreeGiB = 0

	results := RunAll(context.Background(), &cfg, Options{})
	for _, r := range results {
		if r.Name == "Upload credentials" {
			t.Fatal("credentials check should be skipped without upload")
		}
	}
}

func TestRunAll_IncludesCredentialsForUpload(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Uploader.ClientID = ""

	results := RunAll(context.Background(), &cfg, Options{Upload: true})
	found := false
	for _, r := range results {
		if r.Name == "Upload credentials" {
			found = true
			if r.Passed {
				t.Error("expected credentials check to fail with empty client id")
			}
		}
	}
	if !found {
		t.Fatal("expected credentials check in results")
	}
}

func TestFailed(t *testing.T) {
	results := []Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Detail: "broken"},
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "b" {
		t.Fatalf("failed = %#v", failed)
	}
}
