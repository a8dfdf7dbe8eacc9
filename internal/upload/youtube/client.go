// Package youtube implements the upload.Transport interface against the
// YouTube Data API v3 resumable-free multipart endpoint.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/upload"
)

const userAgent = "clipforge/0.1.0"

// tokenSkew refreshes the access token slightly before its reported expiry.
const tokenSkew = 30 * time.Second

// Client uploads finished videos over the YouTube Data API using a stored
// OAuth refresh token.
type Client struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient builds a transport for the configured uploader credentials.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Minute},
		logger: logging.WithComponent(logger, "youtube"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
}

type videoStatus struct {
	PrivacyStatus           string `json:"privacyStatus"`
	PublishAt               string `json:"publishAt,omitempty"`
	SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
}

type videoResource struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

type insertResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Upload pushes one video with its metadata. Failures are tagged with the
// services markers so the orchestrator can distinguish retriable platform
// trouble from terminal misconfiguration.
func (c *Client) Upload(ctx context.Context, req upload.Request) (upload.Response, error) {
	if err := upload.ValidateEnv(c.cfg); err != nil {
		return upload.Response{}, err
	}

	token, err := c.accessTokenFor(ctx)
	if err != nil {
		return upload.Response{}, err
	}

	file, err := os.Open(req.VideoPath)
	if err != nil {
		return upload.Response{}, services.Wrap(services.ErrValidation, "youtube", "open video", req.VideoPath, err)
	}
	defer file.Close()

	resource := videoResource{
		Snippet: videoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryID:  req.CategoryID,
		},
		Status: videoStatus{PrivacyStatus: req.PrivacyStatus},
	}
	if req.PublishAt != nil {
		resource.Status.PublishAt = req.PublishAt.UTC().Format(time.RFC3339)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "build request", "metadata part", err)
	}
	if err := json.NewEncoder(metaPart).Encode(resource); err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "build request", "encode metadata", err)
	}

	videoHeader := textproto.MIMEHeader{}
	videoHeader.Set("Content-Type", "video/mp4")
	videoPart, err := writer.CreatePart(videoHeader)
	if err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "build request", "video part", err)
	}
	if _, err := io.Copy(videoPart, file); err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "build request", "read video", err)
	}
	if err := writer.Close(); err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "build request", "finalize body", err)
	}

	endpoint := c.cfg.Uploader.UploadURL + "?uploadType=multipart&part=snippet,status"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "build request", endpoint, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		// Network-level failures are worth retrying.
		return upload.Response{}, services.Wrap(services.ErrRetriable, "youtube", "upload", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return upload.Response{}, classifyStatus(resp)
	}

	var inserted insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&inserted); err != nil {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "upload", "decode response", err)
	}
	if inserted.ID == "" {
		return upload.Response{}, services.Wrap(services.ErrTransport, "youtube", "upload", "response missing video id", nil)
	}
	return upload.Response{VideoID: inserted.ID}, nil
}

// accessTokenFor returns a cached access token, refreshing it through the
// OAuth token endpoint when absent or near expiry.
func (c *Client) accessTokenFor(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSkew)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.cfg.Uploader.ClientID},
		"client_secret": {c.cfg.Uploader.ClientSecret},
		"refresh_token": {c.cfg.Uploader.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Uploader.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "youtube", "refresh token", c.cfg.Uploader.TokenURL, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", services.Wrap(services.ErrRetriable, "youtube", "refresh token", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// A rejected refresh grant means the stored credentials are bad;
		// treat server-side trouble as retriable like any other call.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", services.Wrap(services.ErrRetriable, "youtube", "refresh token", statusDetail(resp), nil)
		}
		return "", services.Wrap(services.ErrConfiguration, "youtube", "refresh token", statusDetail(resp), nil)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", services.Wrap(services.ErrTransport, "youtube", "refresh token", "decode response", err)
	}
	if token.AccessToken == "" {
		return "", services.Wrap(services.ErrConfiguration, "youtube", "refresh token", "response missing access token", nil)
	}

	c.accessToken = token.AccessToken
	lifetime := time.Duration(token.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	c.tokenExpiry = time.Now().Add(lifetime)
	c.logger.Debug("refreshed access token", logging.Time("expiry", c.tokenExpiry))
	return c.accessToken, nil
}

// classifyStatus maps an API error status to the retry taxonomy: rate limits
// and server errors are retriable, auth failures are configuration problems,
// and anything else in the 4xx range is a terminal validation failure.
func classifyStatus(resp *http.Response) error {
	detail := statusDetail(resp)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return services.Wrap(services.ErrRetriable, "youtube", "upload", detail, nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "youtube", "upload", detail, nil)
	default:
		return services.Wrap(services.ErrValidation, "youtube", "upload", detail, nil)
	}
}

func statusDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed apiError
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, parsed.Error.Message)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" {
		return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, trimmed)
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
