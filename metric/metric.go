// Package metric exposes pipeline counters through Prometheus.
// A nil *Metrics is valid and records nothing.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = `bitpipe`

// Metrics holds the counters shared by every stage of a pipeline.
type Metrics struct {
	chunks  *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	flushes *prometheus.CounterVec
}

// New creates Metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunks handled by a stage.",
		}, []string{"stage"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Bytes handled by a stage.",
		}, []string{"stage"}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Output buffer flushes performed by a sink.",
		}, []string{"stage"}),
	}
	for _, c := range []prometheus.Collector{m.chunks, m.bytes, m.flushes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Chunk records one chunk of n bytes handled by stage.
func (m *Metrics) Chunk(stage string, n int) {
	if m == nil {
		return
	}
	m.chunks.WithLabelValues(stage).Inc()
	m.bytes.WithLabelValues(stage).Add(float64(n))
}

// Flush records one buffer flush by stage.
func (m *Metrics) Flush(stage string) {
	if m == nil {
		return
	}
	m.flushes.WithLabelValues(stage).Inc()
}
