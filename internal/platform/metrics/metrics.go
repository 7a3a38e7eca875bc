// Package metrics holds the Prometheus instruments for the audit and
// notification pipeline. Services hold a *Metrics and increment through
// nil-safe helpers so tests can run without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AuditRecordsWritten  prometheus.Counter
	AuditRecordsSkipped  prometheus.Counter
	AuditRecordsFailed   prometheus.Counter
	NotificationsCreated *prometheus.CounterVec
	NotificationsFailed  prometheus.Counter
	ReactorFailures      prometheus.Counter
	SweepDeleted         *prometheus.CounterVec
	UnreadCacheHits      prometheus.Counter
	UnreadCacheMisses    prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AuditRecordsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_audit_records_written_total",
			Help: "Audit records persisted.",
		}),
		AuditRecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_audit_records_skipped_total",
			Help: "Audit attempts skipped (excluded kind or empty diff).",
		}),
		AuditRecordsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_audit_records_failed_total",
			Help: "Audit persistence failures (swallowed, business write kept).",
		}),
		NotificationsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_notifications_created_total",
			Help: "Notifications dispatched, by category.",
		}, []string{"category"}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_notifications_failed_total",
			Help: "Notification persistence failures (swallowed).",
		}),
		ReactorFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_reactor_failures_total",
			Help: "Event reactor errors and recovered panics.",
		}),
		SweepDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_retention_deleted_total",
			Help: "Notifications physically deleted by the retention sweep, by bucket.",
		}, []string{"bucket"}),
		UnreadCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_unread_cache_hits_total",
			Help: "Unread-count badge requests served from Redis.",
		}),
		UnreadCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nexus_unread_cache_misses_total",
			Help: "Unread-count badge requests that hit the database.",
		}),
	}
}

// IncAuditWritten increments the written counter if metrics are configured.
func (m *Metrics) IncAuditWritten() {
	if m != nil {
		m.AuditRecordsWritten.Inc()
	}
}

// IncAuditSkipped increments the skipped counter if metrics are configured.
func (m *Metrics) IncAuditSkipped() {
	if m != nil {
		m.AuditRecordsSkipped.Inc()
	}
}

// IncAuditFailed increments the failed counter if metrics are configured.
func (m *Metrics) IncAuditFailed() {
	if m != nil {
		m.AuditRecordsFailed.Inc()
	}
}

// IncNotificationCreated increments the per-category dispatch counter.
func (m *Metrics) IncNotificationCreated(category string) {
	if m != nil {
		m.NotificationsCreated.WithLabelValues(category).Inc()
	}
}

// IncNotificationFailed increments the dispatch-failure counter.
func (m *Metrics) IncNotificationFailed() {
	if m != nil {
		m.NotificationsFailed.Inc()
	}
}

// IncReactorFailure increments the reactor failure counter.
func (m *Metrics) IncReactorFailure() {
	if m != nil {
		m.ReactorFailures.Inc()
	}
}

// AddSweepDeleted records deletions for one retention bucket.
func (m *Metrics) AddSweepDeleted(bucket string, n int) {
	if m != nil && n > 0 {
		m.SweepDeleted.WithLabelValues(bucket).Add(float64(n))
	}
}

// IncUnreadCacheHit increments the cache-hit counter.
func (m *Metrics) IncUnreadCacheHit() {
	if m != nil {
		m.UnreadCacheHits.Inc()
	}
}

// IncUnreadCacheMiss increments the cache-miss counter.
func (m *Metrics) IncUnreadCacheMiss() {
	if m != nil {
		m.UnreadCacheMisses.Inc()
	}
}
