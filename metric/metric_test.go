package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Chunk("reader", 4)
	m.Chunk("reader", 2)
	m.Flush("writer")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chunks.WithLabelValues("reader")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.bytes.WithLabelValues("reader")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushes.WithLabelValues("writer")))

	_, err = New(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Chunk("reader", 1)
		m.Flush("writer")
	})
}
