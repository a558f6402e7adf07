package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet metrics
	Operations      *prometheus.CounterVec
	OperationAmount *prometheus.HistogramVec
	BudgetsExceeded prometheus.Counter

	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferAmount     prometheus.Histogram
	TransferErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Storage metrics
	PersistenceErrors *prometheus.CounterVec
	CacheRequests     *prometheus.CounterVec
}

var amountBuckets = []float64{1, 10, 100, 1000, 10000, 100000, 1000000}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_operations_total",
				Help: "Total number of recorded operations",
			},
			[]string{"kind"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gofinance_operation_amount",
				Help:    "Recorded operation amounts",
				Buckets: amountBuckets,
			},
			[]string{"kind"},
		),
		BudgetsExceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_budgets_exceeded_total",
			Help: "Total number of expenses that left a budget exceeded",
		}),
		TransfersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gofinance_transfers_completed_total",
			Help: "Total number of completed transfers",
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gofinance_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: amountBuckets,
		}),
		TransferErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_transfer_errors_total",
				Help: "Total number of rejected transfers",
			},
			[]string{"reason"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_auth_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"},
		),
		PersistenceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_persistence_errors_total",
				Help: "Total number of failed store operations",
			},
			[]string{"operation"},
		),
		CacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofinance_cache_requests_total",
				Help: "Snapshot cache lookups",
			},
			[]string{"result"},
		),
	}
}

// OperationRecorded records an appended income or expense.
func (m *Metrics) OperationRecorded(kind domain.OperationKind, amount decimal.Decimal) {
	m.Operations.WithLabelValues(string(kind)).Inc()
	m.OperationAmount.WithLabelValues(string(kind)).Observe(amount.InexactFloat64())
}

// BudgetExceeded records an expense that left its budget exceeded.
func (m *Metrics) BudgetExceeded() {
	m.BudgetsExceeded.Inc()
}

// TransferCompleted records a successful transfer.
func (m *Metrics) TransferCompleted(amount decimal.Decimal) {
	m.TransfersCompleted.Inc()
	m.TransferAmount.Observe(amount.InexactFloat64())
}

// TransferFailed records a rejected transfer.
func (m *Metrics) TransferFailed(reason string) {
	m.TransferErrors.WithLabelValues(reason).Inc()
}

// AuthAttempt records a login attempt.
func (m *Metrics) AuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.AuthAttempts.WithLabelValues(status).Inc()
}

// PersistenceFailed records a failed load, save or list.
func (m *Metrics) PersistenceFailed(operation string) {
	m.PersistenceErrors.WithLabelValues(operation).Inc()
}

// CacheHit records a snapshot served from the cache.
func (m *Metrics) CacheHit() {
	m.CacheRequests.WithLabelValues("hit").Inc()
}

// CacheMiss records a snapshot lookup that fell through to the store.
func (m *Metrics) CacheMiss() {
	m.CacheRequests.WithLabelValues("miss").Inc()
}
