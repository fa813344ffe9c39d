package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records metadata for ingestion runs.
type IngestMetrics struct {
	runDuration    prometheus.Histogram
	runSuccess     prometheus.Counter
	runFailure     prometheus.Counter
	transactions   *prometheus.CounterVec
	eventsPosted   prometheus.Counter
	lookupFailures *prometheus.CounterVec
}

// NewIngestMetrics registers the ingestion metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_run_duration_seconds",
		Help:    "Duration of ingestion runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	runSuccess := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_run_success",
		Help: "Completed ingestion runs.",
	})
	runFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_run_failure",
		Help: "Ingestion runs that aborted before completing the batch.",
	})
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_transactions_total",
		Help: "Transactions handled per outcome (persisted, existing, skipped).",
	}, []string{"outcome"})
	eventsPosted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_events_posted_total",
		Help: "Helix events successfully posted.",
	})
	lookupFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_lookup_failures_total",
		Help: "Failed metadata lookups per source.",
	}, []string{"source"})
	reg.MustRegister(runDuration, runSuccess, runFailure, transactions, eventsPosted, lookupFailures)
	return &IngestMetrics{
		runDuration:    runDuration,
		runSuccess:     runSuccess,
		runFailure:     runFailure,
		transactions:   transactions,
		eventsPosted:   eventsPosted,
		lookupFailures: lookupFailures,
	}
}

// ObserveRunDuration records how long a full ingestion run took.
func (m *IngestMetrics) ObserveRunDuration(duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
}

// IncRunSuccess increments the completed-run counter.
func (m *IngestMetrics) IncRunSuccess() {
	if m == nil || m.runSuccess == nil {
		return
	}
	m.runSuccess.Inc()
}

// IncRunFailure increments the aborted-run counter.
func (m *IngestMetrics) IncRunFailure() {
	if m == nil || m.runFailure == nil {
		return
	}
	m.runFailure.Inc()
}

// IncTransaction counts one handled transaction by outcome.
func (m *IngestMetrics) IncTransaction(outcome string) {
	if m == nil || m.transactions == nil {
		return
	}
	m.transactions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncEventPosted counts one successfully posted Helix event.
func (m *IngestMetrics) IncEventPosted() {
	if m == nil || m.eventsPosted == nil {
		return
	}
	m.eventsPosted.Inc()
}

// IncLookupFailure counts a failed lookup against the named source.
func (m *IngestMetrics) IncLookupFailure(source string) {
	if m == nil || m.lookupFailures == nil {
		return
	}
	m.lookupFailures.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
