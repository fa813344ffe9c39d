package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gajeshbhat/Verkada-API-Integration/internal/ingest"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/transactions"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubIngestService struct{}

func (stubIngestService) Run(ctx context.Context) (*ingest.Summary, error) {
	return &ingest.Summary{}, nil
}

func (stubIngestService) RunWithWindow(ctx context.Context, window time.Duration) (*ingest.Summary, error) {
	return &ingest.Summary{}, nil
}

type stubTransactionService struct{}

func (stubTransactionService) ListTransactions(ctx context.Context) ([]transactions.TransactionDTO, error) {
	return nil, nil
}

func (stubTransactionService) ListStoreTransactions(ctx context.Context, storeID int64) ([]transactions.TransactionDTO, error) {
	return nil, nil
}

func (stubTransactionService) StoreSales(ctx context.Context, storeID int64) (*transactions.SalesSummaryDTO, error) {
	return &transactions.SalesSummaryDTO{StoreID: storeID}, nil
}

func (stubTransactionService) ListStores(ctx context.Context) ([]transactions.StoreDTO, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test"})
	registry := prometheus.NewRegistry()
	metrics.NewIngestMetrics(registry)

	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, registry, stubIngestService{}, stubTransactionService{})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/v1/ingest/run", http.StatusOK},
		{http.MethodGet, "/api/v1/transactions", http.StatusOK},
		{http.MethodGet, "/api/v1/stores/", http.StatusOK},
		{http.MethodGet, "/api/v1/stores/5/transactions", http.StatusOK},
		{http.MethodGet, "/api/v1/stores/5/sales", http.StatusOK},
		{http.MethodGet, "/does-not-exist", http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		if rec.Code != tc.status {
			t.Errorf("%s %s: expected %d got %d", tc.method, tc.target, tc.status, rec.Code)
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header on response")
	}
}
