// Package telemetry backs the db hook interfaces and the HTTP middleware
// with Prometheus metrics and OpenTelemetry traces.
package telemetry

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jobly"

// QueryMetrics implements db.MetricsCollector.
type QueryMetrics struct {
	duration *prometheus.HistogramVec
}

// NewQueryMetrics registers the query histogram with reg.
func NewQueryMetrics(reg prometheus.Registerer) (*QueryMetrics, error) {
	m := &QueryMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "SQL statement latency by statement verb and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"verb", "success"}),
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *QueryMetrics) RecordQuery(query string, d time.Duration, success bool) {
	m.duration.WithLabelValues(Verb(query), strconv.FormatBool(success)).Observe(d.Seconds())
}

// HTTPMetrics records request latency per matched route.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{
			"pattern", // matched route
			"method",
			"status",
		}),
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one request. An empty pattern is reported as "unknown".
func (m *HTTPMetrics) Observe(pattern, method string, status int, d time.Duration) {
	if pattern == "" {
		pattern = "unknown"
	}
	m.duration.WithLabelValues(pattern, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Verb returns the upper-cased leading keyword of a statement, e.g. "UPDATE".
func Verb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
