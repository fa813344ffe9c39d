package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/verkada"
)

// helixSchema describes the attributes attached to every sales event. Helix
// schemas are fixed per event type, so this never varies at runtime.
var helixSchema = map[string]string{
	"item_id":          "integer",
	"transaction_id":   "integer",
	"transaction_time": "integer",
	"thumbnail_url":    "string",
	"footage_url":      "string",
}

type registrationRepository interface {
	FindByName(ctx context.Context, name string) (*models.EventTypeRegistration, error)
	Create(ctx context.Context, reg *models.EventTypeRegistration) error
}

type helixClient interface {
	CreateEventType(ctx context.Context, name string, schema map[string]string) (string, error)
	ThumbnailLink(ctx context.Context, cameraID, timestampMS int64, expiry time.Duration) (string, error)
	FootageLink(ctx context.Context, cameraID, timestampMS int64) (string, error)
	PostEvent(ctx context.Context, event verkada.HelixEvent) error
}

type linkWriter interface {
	UpdateLinks(ctx context.Context, transactionID int64, thumbnailLink, footageLink string) error
}

// PublishInput carries the correlated identifiers for one sales event.
type PublishInput struct {
	TransactionID int64
	ItemID        int64
	CameraID      int64
	OccurredAt    time.Time
}

// Service registers the Helix event type and publishes sales events onto
// camera timelines.
type Service interface {
	EnsureEventType(ctx context.Context) (string, error)
	Publish(ctx context.Context, uid string, input PublishInput) error
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Logger          *logger.Logger
	Repository      registrationRepository
	Client          helixClient
	Links           linkWriter
	EventTypeName   string
	ThumbnailExpiry time.Duration
}

type service struct {
	logg            *logger.Logger
	repo            registrationRepository
	client          helixClient
	links           linkWriter
	eventTypeName   string
	thumbnailExpiry time.Duration
}

// NewService builds the Helix event service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("registration repository required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("helix client required")
	}
	if params.Links == nil {
		return nil, fmt.Errorf("link writer required")
	}
	if params.EventTypeName == "" {
		return nil, fmt.Errorf("event type name required")
	}
	expiry := params.ThumbnailExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &service{
		logg:            params.Logger,
		repo:            params.Repository,
		client:          params.Client,
		links:           params.Links,
		eventTypeName:   params.EventTypeName,
		thumbnailExpiry: expiry,
	}, nil
}

// EnsureEventType returns the uid for the configured event type, registering
// it with Verkada at most once. The uid is cached durably so restarts never
// re-register.
func (s *service) EnsureEventType(ctx context.Context) (string, error) {
	reg, err := s.repo.FindByName(ctx, s.eventTypeName)
	if err == nil {
		return reg.EventTypeUID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event type registration")
	}

	uid, err := s.client.CreateEventType(ctx, s.eventTypeName, helixSchema)
	if err != nil {
		return "", err
	}

	if err := s.repo.Create(ctx, &models.EventTypeRegistration{
		EventTypeName: s.eventTypeName,
		EventTypeUID:  uid,
	}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist event type registration")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"event_type_name": s.eventTypeName,
		"event_type_uid":  uid,
	})
	s.logg.Info(logCtx, "registered helix event type")
	return uid, nil
}

// Publish resolves footage links for the camera at the transaction instant,
// records them on the transaction, and posts the Helix event. Link resolution
// failures are tolerated: the event still goes out with whatever resolved.
func (s *service) Publish(ctx context.Context, uid string, input PublishInput) error {
	timestampMS := input.OccurredAt.UTC().UnixMilli()
	logCtx := s.logg.WithTransactionID(ctx, input.TransactionID)
	logCtx = s.logg.WithCameraID(logCtx, input.CameraID)

	thumbnail, err := s.client.ThumbnailLink(logCtx, input.CameraID, timestampMS, s.thumbnailExpiry)
	if err != nil {
		s.logg.Warn(logCtx, fmt.Sprintf("thumbnail link unavailable: %v", err))
		thumbnail = ""
	}

	footage, err := s.client.FootageLink(logCtx, input.CameraID, timestampMS)
	if err != nil {
		s.logg.Warn(logCtx, fmt.Sprintf("footage link unavailable: %v", err))
		footage = ""
	}

	// Resolved links are committed before the post and stay committed if
	// the post fails: footage that resolved once is never thrown away.
	if thumbnail != "" && footage != "" {
		if err := s.links.UpdateLinks(logCtx, input.TransactionID, thumbnail, footage); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record footage links")
		}
	}

	event := verkada.HelixEvent{
		CameraID:     input.CameraID,
		EventTypeUID: uid,
		TimeMS:       timestampMS,
		Attributes: map[string]any{
			"item_id":          input.ItemID,
			"transaction_id":   input.TransactionID,
			"transaction_time": timestampMS,
			"thumbnail_url":    thumbnail,
			"footage_url":      footage,
		},
	}
	if err := s.client.PostEvent(logCtx, event); err != nil {
		return err
	}

	s.logg.Info(logCtx, "posted helix event")
	return nil
}
