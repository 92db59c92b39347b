package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Store metrics
	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"store", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	// Cache metrics
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by tier, keyspace and outcome",
		},
		[]string{"tier", "keyspace", "result"},
	)

	CacheWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_writes_total",
			Help: "Cache writes by tier, keyspace and status",
		},
		[]string{"tier", "keyspace", "status"},
	)

	// Business metrics
	NearbyResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nearby_result_size",
			Help:    "Number of users returned by proximity queries",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	LocationUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_updates_total",
			Help: "Location updates by outcome",
		},
		[]string{"status"},
	)

	PrivacyDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "privacy_decisions_total",
			Help: "Profile visibility decisions by visibility mode and outcome",
		},
		[]string{"mode", "allowed"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"exchange", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(store, operation string, err error, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(store, operation, status(err)).Inc()
	DatabaseQueryDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

func RecordCacheLookup(tier, keyspace, result string) {
	CacheLookupsTotal.WithLabelValues(tier, keyspace, result).Inc()
}

func RecordCacheWrite(tier, keyspace string, err error) {
	CacheWritesTotal.WithLabelValues(tier, keyspace, status(err)).Inc()
}

func RecordPrivacyDecision(mode string, allowed bool) {
	PrivacyDecisionsTotal.WithLabelValues(mode, strconv.FormatBool(allowed)).Inc()
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(exchange string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(exchange, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
