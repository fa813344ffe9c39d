package verkada

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
)

func testClient(t *testing.T, base string) *Client {
	t.Helper()
	client, err := NewClient(config.VerkadaConfig{
		BaseURL: base,
		APIKey:  "vk-key",
		OrgID:   "org-1",
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestCameraLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cameras/v1/devices/3" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "vk-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"camera_id":3,"camera_name":"Till Cam","camera_model":"CD42","store_id":5,"pos_id":9}`))
	}))
	defer server.Close()

	camera, err := testClient(t, server.URL).Camera(context.Background(), 3)
	if err != nil {
		t.Fatalf("Camera returned error: %v", err)
	}
	if camera.CameraName != "Till Cam" || camera.StoreID != 5 {
		t.Errorf("unexpected camera record %+v", camera)
	}
}

func TestCameraNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).Camera(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for missing camera")
	}
	if !pkgerrors.IsNotFound(err) {
		t.Errorf("expected not-found code, got %v", err)
	}
}

func TestThumbnailLinkQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("org_id") != "org-1" {
			t.Errorf("expected org_id=org-1, got %q", q.Get("org_id"))
		}
		if q.Get("camera_id") != "3" {
			t.Errorf("expected camera_id=3, got %q", q.Get("camera_id"))
		}
		if q.Get("expiry") != "86400" {
			t.Errorf("expected expiry=86400, got %q", q.Get("expiry"))
		}
		if q.Get("timestamp") != "1706000000000" {
			t.Errorf("expected timestamp=1706000000000, got %q", q.Get("timestamp"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://thumbs.example/abc"}`))
	}))
	defer server.Close()

	link, err := testClient(t, server.URL).ThumbnailLink(context.Background(), 3, 1706000000000, 24*time.Hour)
	if err != nil {
		t.Fatalf("ThumbnailLink returned error: %v", err)
	}
	if link != "https://thumbs.example/abc" {
		t.Errorf("unexpected link %q", link)
	}
}

func TestFootageLinkOmitsExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("expiry") {
			t.Error("footage link should not carry an expiry")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://footage.example/xyz"}`))
	}))
	defer server.Close()

	link, err := testClient(t, server.URL).FootageLink(context.Background(), 3, 1706000000000)
	if err != nil {
		t.Fatalf("FootageLink returned error: %v", err)
	}
	if link != "https://footage.example/xyz" {
		t.Errorf("unexpected link %q", link)
	}
}

func TestCreateEventTypeReturnsUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var payload struct {
			Name   string            `json:"name"`
			Schema map[string]string `json:"event_schema"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Name != "Sales Transactions" {
			t.Errorf("unexpected name %q", payload.Name)
		}
		if payload.Schema["transaction_id"] != "integer" {
			t.Errorf("unexpected schema %+v", payload.Schema)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uid":"evt-uid-1"}`))
	}))
	defer server.Close()

	uid, err := testClient(t, server.URL).CreateEventType(context.Background(), "Sales Transactions", map[string]string{
		"transaction_id": "integer",
	})
	if err != nil {
		t.Fatalf("CreateEventType returned error: %v", err)
	}
	if uid != "evt-uid-1" {
		t.Errorf("unexpected uid %q", uid)
	}
}

func TestPostEventSendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event HelixEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.CameraID != 3 || event.EventTypeUID != "evt-uid-1" {
			t.Errorf("unexpected event %+v", event)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := testClient(t, server.URL).PostEvent(context.Background(), HelixEvent{
		CameraID:     3,
		EventTypeUID: "evt-uid-1",
		TimeMS:       1706000000000,
		Attributes:   map[string]any{"transaction_id": 42},
	})
	if err != nil {
		t.Fatalf("PostEvent returned error: %v", err)
	}
}

func TestPostEventFailureMapsToDependencyCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := testClient(t, server.URL).PostEvent(context.Background(), HelixEvent{CameraID: 3})
	if err == nil {
		t.Fatal("expected error for rejected event")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Errorf("expected dependency code, got %v", err)
	}
}
