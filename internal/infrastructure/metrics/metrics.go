package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Event metrics
	EventsCreated prometheus.Counter
	EventsDeleted prometheus.Counter

	// Expense metrics
	ExpenseOperations *prometheus.CounterVec
	ExpenseAmount     prometheus.Histogram

	// Settlement metrics
	SettlementsComputed prometheus.Counter
	SettlementPayments  prometheus.Histogram
	SettlementErrors    *prometheus.CounterVec

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosplit_events_created_total",
			Help: "Total number of events created",
		}),
		EventsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosplit_events_deleted_total",
			Help: "Total number of events deleted",
		}),

		ExpenseOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosplit_expense_operations_total",
				Help: "Total expense operations by type",
			},
			[]string{"operation"},
		),
		ExpenseAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosplit_expense_amount",
			Help:    "Expense amounts in the expense currency",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		SettlementsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosplit_settlements_computed_total",
			Help: "Total number of settlement plans computed",
		}),
		SettlementPayments: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosplit_settlement_payments",
			Help:    "Number of payments per settlement plan",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
		SettlementErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosplit_settlement_errors_total",
				Help: "Total settlement errors by type",
			},
			[]string{"error_type"},
		),

		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosplit_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gosplit_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosplit_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosplit_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosplit_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}
