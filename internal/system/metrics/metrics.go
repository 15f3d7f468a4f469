// Package metrics exposes Prometheus instrumentation for the workflow engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters tracked by the service.
type Metrics struct {
	// SectionSaves counts completed section saves by resulting status.
	SectionSaves *prometheus.CounterVec
	// ApprovalRequests counts created approval requests by request type.
	ApprovalRequests *prometheus.CounterVec
	// ApprovalResolutions counts resolved approval requests by outcome.
	ApprovalResolutions *prometheus.CounterVec
	// VersionConflicts counts optimistic-lock failures on the active version.
	VersionConflicts prometheus.Counter
	// SignatureRejections counts failed signature verifications.
	SignatureRejections prometheus.Counter
	// RequestDuration observes handler latency by route and method.
	RequestDuration *prometheus.HistogramVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			SectionSaves: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "batch_record",
				Name:      "section_saves_total",
				Help:      "Section saves by resulting status.",
			}, []string{"status"}),
			ApprovalRequests: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "batch_record",
				Name:      "approval_requests_total",
				Help:      "Approval requests created, by request type.",
			}, []string{"type"}),
			ApprovalResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "batch_record",
				Name:      "approval_resolutions_total",
				Help:      "Approval requests resolved, by outcome.",
			}, []string{"outcome"}),
			VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "batch_record",
				Name:      "version_conflicts_total",
				Help:      "Concurrent modification conflicts on the active section version.",
			}),
			SignatureRejections: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "batch_record",
				Name:      "signature_rejections_total",
				Help:      "Electronic signature verifications that failed.",
			}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "batch_record",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and method.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
		}
	})
	return instance
}
