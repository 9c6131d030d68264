// Package metrics holds the domain-level prometheus collectors for PRD uploads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Upload outcomes used as the "outcome" label.
const (
	OutcomeSuccess         = "success"
	OutcomeRejected        = "rejected"
	OutcomeStorageFailed   = "storage_failed"
	OutcomeMetadataFailed  = "metadata_failed"
	OutcomePartiallyFailed = "partially_failed"
)

// UploadMetrics records what the upload pipeline did.
type UploadMetrics struct {
	uploads  *prometheus.CounterVec
	bytes    prometheus.Histogram
	orphaned prometheus.Counter
}

// NewUploadMetrics creates the collectors and registers them on reg.
func NewUploadMetrics(reg prometheus.Registerer) (*UploadMetrics, error) {
	m := &UploadMetrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prd_uploads_total",
				Help: "Upload attempts by outcome.",
			},
			[]string{"outcome"},
		),
		bytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prd_upload_bytes",
			Help:    "Size of objects written to storage.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		orphaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prd_orphaned_objects_total",
			Help: "Stored objects left without a metadata row after a failed cleanup.",
		}),
	}

	for _, c := range []prometheus.Collector{m.uploads, m.bytes, m.orphaned} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe counts one finished upload. size is only recorded for successes.
func (m *UploadMetrics) Observe(outcome string, size int) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.bytes.Observe(float64(size))
	}
	if outcome == OutcomePartiallyFailed {
		m.orphaned.Inc()
	}
}
