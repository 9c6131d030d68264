package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewUploadMetrics(reg)
	require.NoError(t, err)

	m.Observe(OutcomeSuccess, 2048)
	m.Observe(OutcomeSuccess, 10)
	m.Observe(OutcomeRejected, 0)
	m.Observe(OutcomePartiallyFailed, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.uploads.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.uploads.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.orphaned))
	assert.Equal(t, 1, testutil.CollectAndCount(m.bytes))
}

func TestUploadMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewUploadMetrics(reg)
	require.NoError(t, err)

	_, err = NewUploadMetrics(reg)
	assert.Error(t, err)
}

func TestUploadMetrics_NilSafe(t *testing.T) {
	var m *UploadMetrics
	assert.NotPanics(t, func() { m.Observe(OutcomeSuccess, 1) })
}
