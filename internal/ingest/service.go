package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gajeshbhat/Verkada-API-Integration/internal/events"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/metrics"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/retail"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/verkada"
)

const defaultWindow = time.Hour

// ErrRunInProgress signals that another process currently holds the run lock.
var ErrRunInProgress = pkgerrors.New(pkgerrors.CodeConflict, "an ingestion run is already in progress")

type transactionSource interface {
	TransactionsWithin(ctx context.Context, start, end time.Time) ([]retail.SalesTransaction, error)
	Item(ctx context.Context, itemID int64) (*retail.Item, error)
	PointOfServiceByCamera(ctx context.Context, cameraID int64) (*retail.PointOfService, error)
	Store(ctx context.Context, storeID int64) (*retail.Store, error)
}

type cameraSource interface {
	Camera(ctx context.Context, cameraID int64) (*verkada.Camera, error)
}

type storeRepository interface {
	FindByID(ctx context.Context, storeID int64) (*models.Store, error)
	CreateIfAbsentTx(tx *gorm.DB, store *models.Store) (bool, error)
}

type cameraRepository interface {
	FindByID(ctx context.Context, cameraID int64) (*models.Camera, error)
	CreateIfAbsentTx(tx *gorm.DB, camera *models.Camera) (bool, error)
}

type posRepository interface {
	FindByID(ctx context.Context, posID int64) (*models.PointOfService, error)
	CreateIfAbsentTx(tx *gorm.DB, pos *models.PointOfService) (bool, error)
}

type transactionRepository interface {
	FindByID(ctx context.Context, transactionID int64) (*models.Transaction, error)
	CreateIfAbsentTx(tx *gorm.DB, txn *models.Transaction) (bool, error)
	CreateItemIfAbsentTx(tx *gorm.DB, item *models.TransactionItem) (bool, error)
}

type eventPublisher interface {
	EnsureEventType(ctx context.Context) (string, error)
	Publish(ctx context.Context, uid string, input events.PublishInput) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Summary reports what one ingestion run accomplished.
type Summary struct {
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	Fetched      int       `json:"fetched"`
	Persisted    int       `json:"persisted"`
	EventsPosted int       `json:"events_posted"`
	Skipped      int       `json:"skipped"`
}

// Service drives one ingestion cycle: fetch recent sales, enrich them with
// camera and store metadata, persist the correlated rows, and tag camera
// timelines with Helix events.
type Service interface {
	Run(ctx context.Context) (*Summary, error)
	RunWithWindow(ctx context.Context, window time.Duration) (*Summary, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Lock         Lock
	Metrics      *metrics.IngestMetrics
	Retail       transactionSource
	Verkada      cameraSource
	Stores       storeRepository
	Cameras      cameraRepository
	Tills        posRepository
	Transactions transactionRepository
	Events       eventPublisher
	Window       time.Duration
}

type service struct {
	logg         *logger.Logger
	db           txRunner
	lock         Lock
	metrics      *metrics.IngestMetrics
	retail       transactionSource
	verkada      cameraSource
	stores       storeRepository
	cameras      cameraRepository
	tills        posRepository
	transactions transactionRepository
	events       eventPublisher
	window       time.Duration
	now          func() time.Time
}

// NewService builds the ingestion service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("run lock required")
	}
	if params.Retail == nil {
		return nil, fmt.Errorf("retail client required")
	}
	if params.Verkada == nil {
		return nil, fmt.Errorf("verkada client required")
	}
	if params.Stores == nil || params.Cameras == nil || params.Tills == nil || params.Transactions == nil {
		return nil, fmt.Errorf("repositories required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultWindow
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewIngestMetrics(nil)
	}
	return &service{
		logg:         params.Logger,
		db:           params.DB,
		lock:         params.Lock,
		metrics:      params.Metrics,
		retail:       params.Retail,
		verkada:      params.Verkada,
		stores:       params.Stores,
		cameras:      params.Cameras,
		tills:        params.Tills,
		transactions: params.Transactions,
		events:       params.Events,
		window:       window,
		now:          time.Now,
	}, nil
}

// Run executes one ingestion cycle over the configured window.
func (s *service) Run(ctx context.Context) (*Summary, error) {
	return s.RunWithWindow(ctx, s.window)
}

// RunWithWindow executes one ingestion cycle over the provided window. Only
// one run may execute at a time; concurrent callers get ErrRunInProgress.
func (s *service) RunWithWindow(ctx context.Context, window time.Duration) (*Summary, error) {
	if window <= 0 {
		window = s.window
	}

	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire run lock")
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "failed to release run lock", err)
		}
	}()

	started := s.now()
	summary, err := s.run(ctx, window)
	s.metrics.ObserveRunDuration(time.Since(started))
	if err != nil {
		s.metrics.IncRunFailure()
		return nil, err
	}
	s.metrics.IncRunSuccess()
	return summary, nil
}

func (s *service) run(ctx context.Context, window time.Duration) (*Summary, error) {
	end := s.now().UTC()
	start := end.Add(-window)
	summary := &Summary{WindowStart: start, WindowEnd: end}

	batch, err := s.retail.TransactionsWithin(ctx, start, end)
	if err != nil {
		// The sales API being down is not fatal: the next run's window
		// overlaps nothing that was lost, since nothing was fetched.
		s.logg.Error(ctx, "sales fetch failed, treating batch as empty", err)
		return summary, nil
	}
	summary.Fetched = len(batch)

	reg := &eventTypeState{}
	for _, sale := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.processSale(ctx, reg, sale, summary)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"window_start":  start,
		"window_end":    end,
		"fetched":       summary.Fetched,
		"persisted":     summary.Persisted,
		"events_posted": summary.EventsPosted,
		"skipped":       summary.Skipped,
	})
	s.logg.Info(logCtx, "ingestion run complete")
	return summary, nil
}

// eventTypeState caches the Helix event type uid for a single run.
// Registration is lazy: it happens just before the first publish, so runs
// with nothing to tag never touch the registration endpoint, and a
// registration failure costs only this run's event posts, never its writes.
type eventTypeState struct {
	uid    string
	failed bool
}

func (s *service) eventTypeUID(ctx context.Context, reg *eventTypeState) (string, bool) {
	if reg.failed {
		return "", false
	}
	if reg.uid != "" {
		return reg.uid, true
	}
	uid, err := s.events.EnsureEventType(ctx)
	if err != nil {
		s.logg.Error(ctx, "event type registration failed, skipping event posts this run", err)
		reg.failed = true
		return "", false
	}
	reg.uid = uid
	return uid, true
}

// processSale correlates and persists a single sales transaction. Failures
// are contained to the transaction: the rest of the batch still processes.
func (s *service) processSale(ctx context.Context, reg *eventTypeState, sale retail.SalesTransaction, summary *Summary) {
	logCtx := s.logg.WithTransactionID(ctx, sale.TransactionID)

	camera := s.resolveCamera(logCtx, sale.CameraID)
	if camera == nil {
		// Without the camera there is no timeline to tag and no
		// reliable till association, so the sale is not recorded.
		summary.Skipped++
		s.metrics.IncTransaction("skipped")
		return
	}

	till := s.resolveTill(logCtx, sale)
	store := (*models.Store)(nil)
	if till != nil {
		store = s.resolveStore(logCtx, till.StoreID)
	}

	item := s.resolveItem(logCtx, sale.ItemID)

	created, err := s.persistSale(logCtx, sale, camera, till, store, item)
	if err != nil {
		s.logg.Error(logCtx, "failed to persist sale", err)
		s.metrics.IncTransaction("error")
		return
	}

	if till == nil {
		summary.Skipped++
		s.metrics.IncTransaction("skipped")
		return
	}
	if created {
		summary.Persisted++
		s.metrics.IncTransaction("created")
	} else {
		s.metrics.IncTransaction("duplicate")
	}

	if item == nil {
		return
	}
	if !created && s.hasLinks(logCtx, sale.TransactionID) {
		// Links on the row mean an earlier run already resolved this
		// sale's footage; re-publishing would duplicate the event.
		return
	}

	uid, ok := s.eventTypeUID(logCtx, reg)
	if !ok {
		return
	}

	err = s.events.Publish(logCtx, uid, events.PublishInput{
		TransactionID: sale.TransactionID,
		ItemID:        sale.ItemID,
		CameraID:      camera.CameraID,
		OccurredAt:    sale.OccurredAt(),
	})
	if err != nil {
		// The sale row and any resolved links are already durable; the
		// failure costs only this event post.
		s.logg.Error(logCtx, "failed to post helix event", err)
		return
	}
	summary.EventsPosted++
	s.metrics.IncEventPosted()
}

func (s *service) resolveCamera(ctx context.Context, cameraID int64) *models.Camera {
	camera, err := s.cameras.FindByID(ctx, cameraID)
	if err == nil {
		return camera
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "camera lookup failed", err)
		s.metrics.IncLookupFailure("camera")
		return nil
	}

	remote, err := s.verkada.Camera(ctx, cameraID)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("camera %d unresolved: %v", cameraID, err))
		s.metrics.IncLookupFailure("camera")
		return nil
	}
	return &models.Camera{
		CameraID:    remote.CameraID,
		CameraName:  remote.CameraName,
		CameraModel: remote.CameraModel,
		StoreID:     remote.StoreID,
	}
}

func (s *service) resolveTill(ctx context.Context, sale retail.SalesTransaction) *models.PointOfService {
	till, err := s.tills.FindByID(ctx, sale.POSID)
	if err == nil {
		return till
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "till lookup failed", err)
		s.metrics.IncLookupFailure("pos")
		return nil
	}

	remote, err := s.retail.PointOfServiceByCamera(ctx, sale.CameraID)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("till for camera %d unresolved: %v", sale.CameraID, err))
		s.metrics.IncLookupFailure("pos")
		return nil
	}
	return &models.PointOfService{
		POSID:    remote.POSID,
		POSName:  remote.POSName,
		StoreID:  remote.StoreID,
		CameraID: remote.CameraID,
	}
}

func (s *service) resolveStore(ctx context.Context, storeID int64) *models.Store {
	store, err := s.stores.FindByID(ctx, storeID)
	if err == nil {
		return store
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "store lookup failed", err)
		s.metrics.IncLookupFailure("store")
		return nil
	}

	remote, err := s.retail.Store(ctx, storeID)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("store %d unresolved: %v", storeID, err))
		s.metrics.IncLookupFailure("store")
		return nil
	}
	return &models.Store{
		StoreID:      remote.StoreID,
		StoreName:    remote.StoreName,
		StoreAddress: remote.StoreAddress,
		StorePhone:   remote.StorePhone,
		StoreEmail:   remote.StoreEmail,
	}
}

func (s *service) resolveItem(ctx context.Context, itemID int64) *retail.Item {
	item, err := s.retail.Item(ctx, itemID)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("item %d unresolved: %v", itemID, err))
		s.metrics.IncLookupFailure("item")
		return nil
	}
	return item
}

// persistSale writes every resolved piece of the sale in one transaction.
// Rows that already exist are left untouched. It reports whether the sale
// row itself was newly written.
func (s *service) persistSale(ctx context.Context, sale retail.SalesTransaction, camera *models.Camera, till *models.PointOfService, store *models.Store, item *retail.Item) (bool, error) {
	var created bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if store != nil {
			if _, err := s.stores.CreateIfAbsentTx(tx, store); err != nil {
				return fmt.Errorf("persist store: %w", err)
			}
		}
		if _, err := s.cameras.CreateIfAbsentTx(tx, camera); err != nil {
			return fmt.Errorf("persist camera: %w", err)
		}
		if till == nil {
			return nil
		}
		if _, err := s.tills.CreateIfAbsentTx(tx, till); err != nil {
			return fmt.Errorf("persist till: %w", err)
		}

		wasCreated, err := s.transactions.CreateIfAbsentTx(tx, &models.Transaction{
			TransactionID:     sale.TransactionID,
			TransactionNumber: sale.TransactionNumber,
			TransactionDate:   sale.OccurredAt(),
			POSID:             till.POSID,
		})
		if err != nil {
			return fmt.Errorf("persist transaction: %w", err)
		}
		created = wasCreated

		if item == nil {
			return nil
		}
		if _, err := s.transactions.CreateItemIfAbsentTx(tx, &models.TransactionItem{
			TransactionID: sale.TransactionID,
			ItemName:      item.ItemName,
			ItemPrice:     item.ItemPrice,
		}); err != nil {
			return fmt.Errorf("persist transaction item: %w", err)
		}
		return nil
	})
	return created, err
}

func (s *service) hasLinks(ctx context.Context, transactionID int64) bool {
	txn, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return false
	}
	return txn.ThumbnailLink != nil && txn.FootageLink != nil
}
