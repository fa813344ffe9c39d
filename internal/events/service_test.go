package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/verkada"
)

type stubRegistrationRepo struct {
	byName  map[string]models.EventTypeRegistration
	creates int
}

func (s *stubRegistrationRepo) FindByName(ctx context.Context, name string) (*models.EventTypeRegistration, error) {
	reg, ok := s.byName[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &reg, nil
}

func (s *stubRegistrationRepo) Create(ctx context.Context, reg *models.EventTypeRegistration) error {
	if s.byName == nil {
		s.byName = make(map[string]models.EventTypeRegistration)
	}
	s.creates++
	s.byName[reg.EventTypeName] = *reg
	return nil
}

type stubHelixClient struct {
	createdTypes  int
	uid           string
	thumbnailErr  error
	footageErr    error
	postErr       error
	postedEvents  []verkada.HelixEvent
	createdSchema map[string]string
}

func (s *stubHelixClient) CreateEventType(ctx context.Context, name string, schema map[string]string) (string, error) {
	s.createdTypes++
	s.createdSchema = schema
	return s.uid, nil
}

func (s *stubHelixClient) ThumbnailLink(ctx context.Context, cameraID, timestampMS int64, expiry time.Duration) (string, error) {
	if s.thumbnailErr != nil {
		return "", s.thumbnailErr
	}
	return fmt.Sprintf("https://thumbs/%d/%d", cameraID, timestampMS), nil
}

func (s *stubHelixClient) FootageLink(ctx context.Context, cameraID, timestampMS int64) (string, error) {
	if s.footageErr != nil {
		return "", s.footageErr
	}
	return fmt.Sprintf("https://footage/%d/%d", cameraID, timestampMS), nil
}

func (s *stubHelixClient) PostEvent(ctx context.Context, event verkada.HelixEvent) error {
	if s.postErr != nil {
		return s.postErr
	}
	s.postedEvents = append(s.postedEvents, event)
	return nil
}

type stubLinkWriter struct {
	calls  int
	lastID int64
	thumb  string
	foot   string
	err    error
}

func (s *stubLinkWriter) UpdateLinks(ctx context.Context, transactionID int64, thumbnailLink, footageLink string) error {
	if s.err != nil {
		return s.err
	}
	s.calls++
	s.lastID = transactionID
	s.thumb = thumbnailLink
	s.foot = footageLink
	return nil
}

func newTestService(t *testing.T, repo *stubRegistrationRepo, client *stubHelixClient, links *stubLinkWriter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:          logger.New(logger.Options{ServiceName: "test"}),
		Repository:      repo,
		Client:          client,
		Links:           links,
		EventTypeName:   "Sales Transactions",
		ThumbnailExpiry: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestEnsureEventTypeRegistersOnce(t *testing.T) {
	repo := &stubRegistrationRepo{}
	client := &stubHelixClient{uid: "evt-uid-1"}
	svc := newTestService(t, repo, client, &stubLinkWriter{})
	ctx := context.Background()

	uid, err := svc.EnsureEventType(ctx)
	if err != nil {
		t.Fatalf("EnsureEventType returned error: %v", err)
	}
	if uid != "evt-uid-1" {
		t.Errorf("unexpected uid %q", uid)
	}
	if client.createdSchema["transaction_time"] != "integer" {
		t.Errorf("unexpected schema %+v", client.createdSchema)
	}

	uid, err = svc.EnsureEventType(ctx)
	if err != nil {
		t.Fatalf("second EnsureEventType returned error: %v", err)
	}
	if uid != "evt-uid-1" {
		t.Errorf("unexpected uid on second call %q", uid)
	}
	if client.createdTypes != 1 {
		t.Errorf("expected one remote registration, got %d", client.createdTypes)
	}
}

func TestEnsureEventTypeReusesDurableRegistration(t *testing.T) {
	repo := &stubRegistrationRepo{byName: map[string]models.EventTypeRegistration{
		"Sales Transactions": {EventTypeName: "Sales Transactions", EventTypeUID: "evt-uid-old"},
	}}
	client := &stubHelixClient{uid: "evt-uid-new"}
	svc := newTestService(t, repo, client, &stubLinkWriter{})

	uid, err := svc.EnsureEventType(context.Background())
	if err != nil {
		t.Fatalf("EnsureEventType returned error: %v", err)
	}
	if uid != "evt-uid-old" {
		t.Errorf("expected cached uid, got %q", uid)
	}
	if client.createdTypes != 0 {
		t.Errorf("expected no remote registration, got %d", client.createdTypes)
	}
}

func TestPublishRecordsLinksAndPostsEvent(t *testing.T) {
	client := &stubHelixClient{uid: "evt-uid-1"}
	links := &stubLinkWriter{}
	svc := newTestService(t, &stubRegistrationRepo{}, client, links)

	occurred := time.Date(2024, 1, 23, 9, 33, 20, 0, time.UTC)
	err := svc.Publish(context.Background(), "evt-uid-1", PublishInput{
		TransactionID: 42,
		ItemID:        7,
		CameraID:      3,
		OccurredAt:    occurred,
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if links.calls != 1 || links.lastID != 42 {
		t.Errorf("expected one link write for transaction 42, got %d for %d", links.calls, links.lastID)
	}
	if len(client.postedEvents) != 1 {
		t.Fatalf("expected one posted event, got %d", len(client.postedEvents))
	}
	event := client.postedEvents[0]
	if event.TimeMS != occurred.UnixMilli() {
		t.Errorf("unexpected event time %d", event.TimeMS)
	}
	if event.Attributes["transaction_id"] != int64(42) {
		t.Errorf("unexpected attributes %+v", event.Attributes)
	}
	if event.Attributes["thumbnail_url"] != links.thumb {
		t.Errorf("event thumbnail %v does not match recorded link %q", event.Attributes["thumbnail_url"], links.thumb)
	}
}

func TestPublishToleratesMissingLinks(t *testing.T) {
	client := &stubHelixClient{
		uid:          "evt-uid-1",
		thumbnailErr: fmt.Errorf("no footage at timestamp"),
	}
	links := &stubLinkWriter{}
	svc := newTestService(t, &stubRegistrationRepo{}, client, links)

	err := svc.Publish(context.Background(), "evt-uid-1", PublishInput{
		TransactionID: 42,
		ItemID:        7,
		CameraID:      3,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if links.calls != 0 {
		t.Errorf("expected no link write when a link is missing, got %d", links.calls)
	}
	if len(client.postedEvents) != 1 {
		t.Fatalf("expected event posted despite missing thumbnail, got %d", len(client.postedEvents))
	}
	if client.postedEvents[0].Attributes["thumbnail_url"] != "" {
		t.Errorf("expected empty thumbnail attribute, got %v", client.postedEvents[0].Attributes["thumbnail_url"])
	}
}

func TestPublishReturnsPostFailure(t *testing.T) {
	client := &stubHelixClient{
		uid:     "evt-uid-1",
		postErr: fmt.Errorf("rate limited"),
	}
	svc := newTestService(t, &stubRegistrationRepo{}, client, &stubLinkWriter{})

	err := svc.Publish(context.Background(), "evt-uid-1", PublishInput{
		TransactionID: 42,
		CameraID:      3,
		OccurredAt:    time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected error from failed post")
	}
}

func TestPublishKeepsLinksWhenPostFails(t *testing.T) {
	client := &stubHelixClient{
		uid:     "evt-uid-1",
		postErr: fmt.Errorf("rate limited"),
	}
	links := &stubLinkWriter{}
	svc := newTestService(t, &stubRegistrationRepo{}, client, links)

	err := svc.Publish(context.Background(), "evt-uid-1", PublishInput{
		TransactionID: 42,
		CameraID:      3,
		OccurredAt:    time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected error from failed post")
	}

	if links.calls != 1 || links.lastID != 42 {
		t.Errorf("expected the link write to survive the failed post, got %d calls for %d", links.calls, links.lastID)
	}
	if links.thumb == "" || links.foot == "" {
		t.Errorf("expected both links recorded, got thumb=%q foot=%q", links.thumb, links.foot)
	}
}

func TestPublishDoesNotPostWhenLinkWriteFails(t *testing.T) {
	client := &stubHelixClient{uid: "evt-uid-1"}
	links := &stubLinkWriter{err: fmt.Errorf("db gone")}
	svc := newTestService(t, &stubRegistrationRepo{}, client, links)

	err := svc.Publish(context.Background(), "evt-uid-1", PublishInput{
		TransactionID: 42,
		CameraID:      3,
		OccurredAt:    time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected error from failed link write")
	}
	if len(client.postedEvents) != 0 {
		t.Errorf("expected no event posted when the link write fails, got %d", len(client.postedEvents))
	}
}
