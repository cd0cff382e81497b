package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for bulletin queries.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Fetches       *prometheus.CounterVec
	FetchRetries  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	CacheLookups  *prometheus.CounterVec
	DisplayRows   prometheus.Gauge
	ImportedRows  *prometheus.CounterVec
}

// New registers all bulletin metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visabulletin_fetches_total",
			Help: "Data store fetches by query and outcome",
		}, []string{"query", "outcome"}),
		FetchRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visabulletin_fetch_retries_total",
			Help: "Retries after transient data store failures",
		}, []string{"query"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visabulletin_fetch_duration_seconds",
			Help:    "Duration of data store fetches including retries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"query"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visabulletin_cache_lookups_total",
			Help: "Snapshot cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		DisplayRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "visabulletin_display_rows",
			Help: "Category and region rows in the most recently aggregated snapshot",
		}),
		ImportedRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visabulletin_imported_rows_total",
			Help: "Imported bulletin rows by result (changed, unchanged, failed)",
		}, []string{"result"}),
	}
}

// ObserveFetch records one fetch. Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFetch(query string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Fetches.WithLabelValues(query, outcome).Inc()
	m.FetchDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// IncrementRetry records a retry of query
func (m *Metrics) IncrementRetry(query string) {
	if m == nil {
		return
	}
	m.FetchRetries.WithLabelValues(query).Inc()
}

// ObserveCache records a cache lookup result
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetDisplayRows records the size of the latest aggregated snapshot
func (m *Metrics) SetDisplayRows(n int) {
	if m == nil {
		return
	}
	m.DisplayRows.Set(float64(n))
}

// ObserveImport records the result of importing one row
func (m *Metrics) ObserveImport(result string) {
	if m == nil {
		return
	}
	m.ImportedRows.WithLabelValues(result).Inc()
}
