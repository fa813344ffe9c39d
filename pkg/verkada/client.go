package verkada

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
)

const (
	cameraPath        = "/cameras/v1/devices"
	thumbnailLinkPath = "/cameras/v1/footage/thumbnails/link"
	footageLinkPath   = "/cameras/v1/footage/link"
	eventTypePath     = "/cameras/v1/video_tagging/event_type"
	eventPath         = "/cameras/v1/video_tagging/event"

	apiKeyHeader                = "x-api-key"
	responseBodyReadLimit int64 = 1024
)

// Client talks to the Verkada command APIs: camera metadata, footage links,
// and Helix video tagging.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	orgID      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the Verkada client from configuration. The API key and
// organization id are mandatory since every endpoint requires them.
func NewClient(cfg config.VerkadaConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("verkada base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("verkada API key is required")
	}
	if strings.TrimSpace(cfg.OrgID) == "" {
		return nil, fmt.Errorf("verkada org id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		orgID:      strings.TrimSpace(cfg.OrgID),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Camera is a camera device record from the command API.
type Camera struct {
	CameraID    int64  `json:"camera_id"`
	CameraName  string `json:"camera_name"`
	CameraModel string `json:"camera_model"`
	StoreID     int64  `json:"store_id"`
	POSID       int64  `json:"pos_id"`
}

// HelixEvent is a video tagging event to attach to a camera's timeline.
type HelixEvent struct {
	CameraID     int64          `json:"camera_id"`
	EventTypeUID string         `json:"event_type_uid"`
	TimeMS       int64          `json:"time_ms"`
	Attributes   map[string]any `json:"attributes"`
}

// Camera looks up a camera device by its external id.
func (c *Client) Camera(ctx context.Context, cameraID int64) (*Camera, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "verkada client not configured")
	}

	var camera Camera
	endpoint := fmt.Sprintf("%s%s/%d", c.baseURL, cameraPath, cameraID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "camera", &camera); err != nil {
		return nil, err
	}
	return &camera, nil
}

// ThumbnailLink requests a shareable thumbnail URL for a camera at the given
// epoch-milliseconds instant, valid for the provided expiry.
func (c *Client) ThumbnailLink(ctx context.Context, cameraID, timestampMS int64, expiry time.Duration) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "verkada client not configured")
	}

	params := url.Values{}
	params.Set("org_id", c.orgID)
	params.Set("camera_id", strconv.FormatInt(cameraID, 10))
	params.Set("expiry", strconv.FormatInt(int64(expiry.Seconds()), 10))
	if timestampMS > 0 {
		params.Set("timestamp", strconv.FormatInt(timestampMS, 10))
	}

	var body struct {
		URL string `json:"url"`
	}
	endpoint := c.baseURL + thumbnailLinkPath + "?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "thumbnail link", &body); err != nil {
		return "", err
	}
	return body.URL, nil
}

// FootageLink requests a playback URL for a camera at the given
// epoch-milliseconds instant.
func (c *Client) FootageLink(ctx context.Context, cameraID, timestampMS int64) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "verkada client not configured")
	}

	params := url.Values{}
	params.Set("org_id", c.orgID)
	params.Set("camera_id", strconv.FormatInt(cameraID, 10))
	if timestampMS > 0 {
		params.Set("timestamp", strconv.FormatInt(timestampMS, 10))
	}

	var body struct {
		URL string `json:"url"`
	}
	endpoint := c.baseURL + footageLinkPath + "?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "footage link", &body); err != nil {
		return "", err
	}
	return body.URL, nil
}

// CreateEventType registers a Helix event type and returns the uid assigned
// by Verkada. The schema maps attribute names to Helix type names.
func (c *Client) CreateEventType(ctx context.Context, name string, schema map[string]string) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "verkada client not configured")
	}

	payload := map[string]any{
		"name":         name,
		"event_schema": schema,
	}

	var body struct {
		UID string `json:"uid"`
	}
	endpoint := c.baseURL + eventTypePath + "?org_id=" + url.QueryEscape(c.orgID)
	if err := c.do(ctx, http.MethodPost, endpoint, payload, "create event type", &body); err != nil {
		return "", err
	}
	if body.UID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "event type response missing uid")
	}
	return body.UID, nil
}

// PostEvent attaches a Helix event to the camera's timeline.
func (c *Client) PostEvent(ctx context.Context, event HelixEvent) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "verkada client not configured")
	}

	endpoint := c.baseURL + eventPath + "?org_id=" + url.QueryEscape(c.orgID)
	return c.do(ctx, http.MethodPost, endpoint, event, "post event", nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, op string, dest any) error {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s payload", op))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", op))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), fmt.Sprintf("%s request failed", op))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return nil
}
