package metrics

import (
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts handled requests by route and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kays_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "code"},
	)

	// RequestLatency records request duration by route.
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kays_http_request_duration_seconds",
			Help:    "HTTP request latency distributions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// FetchErrors counts failed service catalogue fetches.
	FetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kays_services_fetch_errors_total",
			Help: "Number of GET /api/services requests that failed to load data",
		},
	)

	initOnce sync.Once
)

// Init registers the request metrics with the default registry.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RequestLatency)
		prometheus.MustRegister(FetchErrors)
	})
}

// RegisterPool exposes connection pool gauges read from stat on each scrape.
func RegisterPool(reg prometheus.Registerer, stat func() *pgxpool.Stat) {
	gauge := func(name, help string, value func(*pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: name, Help: help},
			func() float64 { return value(stat()) },
		)
	}

	reg.MustRegister(
		gauge("kays_db_pool_acquired_conns", "Connections currently borrowed from the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
		gauge("kays_db_pool_idle_conns", "Idle connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
		gauge("kays_db_pool_total_conns", "Total connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
	)
}
