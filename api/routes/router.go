package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gajeshbhat/Verkada-API-Integration/api/controllers"
	"github.com/gajeshbhat/Verkada-API-Integration/api/middleware"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/ingest"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/transactions"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
	ingestService ingest.Service,
	transactionService transactions.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest/run", controllers.IngestRun(ingestService, logg))
		r.Get("/transactions", controllers.ListTransactions(transactionService, logg))
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.ListStores(transactionService, logg))
			r.Get("/{storeID}/transactions", controllers.StoreTransactions(transactionService, logg))
			r.Get("/{storeID}/sales", controllers.StoreSales(transactionService, logg))
		})
	})

	return r
}
