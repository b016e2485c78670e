package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected authentication attempts by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_auth_failures_total",
		Help: "Total number of rejected authentication attempts by reason",
	}, []string{"reason"})

	// SessionsIssued counts tokens issued by trigger (signup, login).
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_sessions_issued_total",
		Help: "Total number of session tokens issued",
	}, []string{"trigger"})

	// EmailSends counts transactional email attempts by kind and outcome.
	EmailSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_email_sends_total",
		Help: "Total number of transactional email send attempts",
	}, []string{"kind", "status"})

	// AvatarUploads counts avatar upload attempts by outcome.
	AvatarUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_avatar_uploads_total",
		Help: "Total number of avatar upload attempts",
	}, []string{"status"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
