package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), 3, 2, 1); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCapturingService(t *testing.T) (notifications.Service, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.title = r.Header.Get("Title")
		got.message = string(body)
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	return notifications.NewService(&cfg), got
}

func TestNotifyRunCompletedFormatsPayload(t *testing.T) {
	svc, got := newCapturingService(t)
	if err := svc.NotifyRunCompleted(context.Background(), 3, 2, 1); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if got.title != "Clipforge - Run Complete" {
		t.Fatalf("title = %q", got.title)
	}
	if got.message != "Processed 3 item(s): 2 produced, 1 failed" {
		t.Fatalf("message = %q", got.message)
	}
	if got.priority != "high" {
		t.Fatalf("priority = %q, want high for a run with errors", got.priority)
	}
}

func TestNotifyRunCompletedWithoutErrorsUsesDefaultPriority(t *testing.T) {
	svc, got := newCapturingService(t)
	if err := svc.NotifyRunCompleted(context.Background(), 2, 2, 0); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if got.priority != "" {
		t.Fatalf("priority = %q, want default", got.priority)
	}
}

func TestNotifyUploadFailed(t *testing.T) {
	svc, got := newCapturingService(t)
	if err := svc.NotifyUploadFailed(context.Background(), "Crazy Cat Fails #1", "quota exceeded"); err != nil {
		t.Fatalf("NotifyUploadFailed: %v", err)
	}
	if !strings.Contains(got.message, "Crazy Cat Fails #1") || !strings.Contains(got.message, "quota exceeded") {
		t.Fatalf("message = %q", got.message)
	}
	if got.tags != "clipforge,upload,failed" {
		t.Fatalf("tags = %q", got.tags)
	}
}

func TestNotifyErrorIncludesContext(t *testing.T) {
	svc, got := newCapturingService(t)
	if err := svc.NotifyError(context.Background(), errors.New("disk full"), "render"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if got.message != "render: disk full" {
		t.Fatalf("message = %q", got.message)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("denied"))
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
