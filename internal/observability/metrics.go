package observability

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded on the signup counter.
const (
	SignupOutcomeCreated       = "created"
	SignupOutcomeEmailConflict = "email_conflict"
	SignupOutcomeIDConflict    = "id_conflict"
	SignupOutcomeError         = "error"
)

// Result labels recorded on the transaction counter.
const (
	TxResultCommit   = "commit"
	TxResultRollback = "rollback"
)

// Metrics holds every custom metric the service exports.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Signup metrics
	SignupsTotal         *prometheus.CounterVec
	PasswordHashDuration prometheus.Histogram

	// Database metrics
	DBTransactionsTotal *prometheus.CounterVec
	DBConnectionsOpen   prometheus.Gauge
	DBConnectionsInUse  prometheus.Gauge
}

// NewMetrics registers all metrics on the given registerer. Tests pass a
// fresh registry so repeated construction never double-registers.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		SignupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signups_total",
				Help: "Total number of signup attempts by outcome",
			},
			[]string{"outcome"},
		),

		PasswordHashDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "password_hash_duration_seconds",
				Help:    "Duration of password hashing in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),

		DBTransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_transactions_total",
				Help: "Total number of database transactions by result",
			},
			[]string{"result"},
		),

		DBConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_open",
				Help: "Number of open database connections",
			},
		),

		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_in_use",
				Help: "Number of database connections currently in use",
			},
		),
	}
}

// CountSignup increments the signup counter for outcome. Safe on a nil
// receiver so code paths without metrics need no guards.
func (m *Metrics) CountSignup(outcome string) {
	if m == nil {
		return
	}
	m.SignupsTotal.WithLabelValues(outcome).Inc()
}

// ObservePasswordHash records one hashing duration.
func (m *Metrics) ObservePasswordHash(d time.Duration) {
	if m == nil {
		return
	}
	m.PasswordHashDuration.Observe(d.Seconds())
}

// CountTransaction increments the transaction counter for result.
func (m *Metrics) CountTransaction(result string) {
	if m == nil {
		return
	}
	m.DBTransactionsTotal.WithLabelValues(result).Inc()
}

// CollectDBStats samples pool statistics into the gauges until ctx ends.
func (m *Metrics) CollectDBStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
			m.DBConnectionsInUse.Set(float64(stats.InUse))
		}
	}
}

// GlobalMetrics is the shared instance initialized at startup.
var GlobalMetrics *Metrics

// InitMetrics initializes the global metrics on the default registry.
func InitMetrics() {
	GlobalMetrics = NewMetrics(prometheus.DefaultRegisterer)
}
