package upload

import (
	"context"
	"strings"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/services"
)

// Request carries the finished payload for one platform upload call.
type Request struct {
	VideoPath     string
	Title         string
	Description   string
	Tags          []string
	CategoryID    string
	PrivacyStatus string
	PublishAt     *time.Time
}

// Response reports the platform-assigned identifier for a successful upload.
type Response struct {
	VideoID string
}

// Transport performs the actual authenticated upload call. Implementations
// classify failures with the services error markers so the orchestrator can
// decide between retrying and failing fast.
type Transport interface {
	Upload(ctx context.Context, req Request) (Response, error)
}

// ValidateEnv checks that upload credentials are fully configured. It is
// called before any item is attempted so a misconfigured environment aborts
// a batch without consuming retry budget or mutating queue state.
func ValidateEnv(cfg *config.Config) error {
	u := cfg.Uploader
	missing := make([]string, 0, 3)
	if strings.TrimSpace(u.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(u.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if strings.TrimSpace(u.RefreshToken) == "" {
		missing = append(missing, "refresh_token")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "upload", "credentials",
			"uploader is missing "+strings.Join(missing, ", "), nil)
	}
	return nil
}
