package middleware

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/metrics"
)

// Metrics records request count, latency and in-flight requests.
func (m *Middleware) Metrics(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// scrapes are not traffic
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			metrics.HttpRequestsInFlight.WithLabelValues(serviceName).Inc()
			defer metrics.HttpRequestsInFlight.WithLabelValues(serviceName).Dec()

			rw := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			metrics.RecordHTTPMetrics(serviceName, r.Method, r.URL.Path, rw.code(), time.Since(start))
		})
	}
}
