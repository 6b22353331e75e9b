package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Ledger metrics
	LedgerLatency  *prometheus.HistogramVec
	LedgerRequests *prometheus.CounterVec

	// Cache metrics
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	DegradedReads prometheus.Counter

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Business metrics
	PortfoliosCreated     prometheus.Counter
	PurchasesTotal        *prometheus.CounterVec
	RevenueTotal          *prometheus.CounterVec
	VotesCast             *prometheus.CounterVec
	VerificationDecisions *prometheus.CounterVec
	SubscriptionChanges   *prometheus.CounterVec
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		LedgerLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_request_duration_seconds",
				Help:    "Ledger service request duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		LedgerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_requests_total",
				Help: "Total number of requests to the ledger service",
			},
			[]string{"operation", "status"},
		),

		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
		DegradedReads: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "degraded_reads_total",
				Help: "Total number of listing reads served from cache because the primary store was unreachable",
			},
		),

		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		PortfoliosCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "portfolios_created_total",
				Help: "Total number of portfolios created",
			},
		),
		PurchasesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "purchases_total",
				Help: "Total number of purchase attempts",
			},
			[]string{"status"},
		),
		RevenueTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revenue_total_usd",
				Help: "Total revenue in USD",
			},
			[]string{"type"},
		),
		VotesCast: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "votes_cast_total",
				Help: "Total number of vote actions",
			},
			[]string{"vote_type"},
		),
		VerificationDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verification_decisions_total",
				Help: "Total number of verification decisions",
			},
			[]string{"decision"},
		),
		SubscriptionChanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscription_changes_total",
				Help: "Total number of subscription tier changes",
			},
			[]string{"tier"},
		),
	}

	return metrics
}

// Get returns the global metrics instance
func Get() *Metrics {
	if metrics == nil {
		return Init()
	}
	return metrics
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordLedgerRequest records a ledger call with its outcome and latency
func RecordLedgerRequest(operation, status string, duration time.Duration) {
	m := Get()
	m.LedgerRequests.WithLabelValues(operation, status).Inc()
	m.LedgerLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPurchase records a purchase attempt outcome
func RecordPurchase(status string, amountUSD float64) {
	m := Get()
	m.PurchasesTotal.WithLabelValues(status).Inc()
	if status == "completed" && amountUSD > 0 {
		m.RevenueTotal.WithLabelValues("purchase").Add(amountUSD)
	}
}

// RecordVote records a vote action
func RecordVote(voteType string) {
	Get().VotesCast.WithLabelValues(voteType).Inc()
}

// RecordVerificationDecision records an approve or reject decision
func RecordVerificationDecision(decision string) {
	Get().VerificationDecisions.WithLabelValues(decision).Inc()
}

// RecordSubscriptionChange records a tier change
func RecordSubscriptionChange(tier string) {
	Get().SubscriptionChanges.WithLabelValues(tier).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	Get().CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	Get().CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDegradedRead records a listing served from cache during a primary
// store outage
func RecordDegradedRead() {
	Get().DegradedReads.Inc()
}
