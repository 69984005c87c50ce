// Package metrics exports pipeline metrics in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/binkread/internal/summarize"
)

// Exporter owns a private registry, so several instances can coexist in tests.
type Exporter struct {
	registry *prometheus.Registry

	chunks        *prometheus.CounterVec
	chunkTokens   prometheus.Histogram
	oracleLatency prometheus.Histogram
	documents     *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

func New() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}

	e.chunks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "binkread",
			Name:      "chunks_total",
			Help:      "Chunks handled by the summarization pipeline, by outcome.",
		},
		[]string{"outcome"},
	)
	e.chunkTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "binkread",
			Name:      "chunk_tokens",
			Help:      "Token count of each chunk at the token gate.",
			Buckets:   []float64{64, 128, 256, 512, 768, 1024, 1536, 2048, 4096},
		},
	)
	e.oracleLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "binkread",
			Name:      "oracle_latency_seconds",
			Help:      "Summarizer call latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	e.documents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "binkread",
			Name:      "documents_total",
			Help:      "Documents processed, by final status.",
		},
		[]string{"status"},
	)
	e.queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "binkread",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker.",
		},
	)

	e.registry.MustRegister(e.chunks, e.chunkTokens, e.oracleLatency, e.documents, e.queueDepth)
	return e
}

// ObserveChunk implements summarize.Observer.
func (e *Exporter) ObserveChunk(ev summarize.ChunkEvent) {
	e.chunks.WithLabelValues(string(ev.Outcome)).Inc()
	if ev.Tokens > 0 {
		e.chunkTokens.Observe(float64(ev.Tokens))
	}
	if ev.Duration > 0 {
		e.oracleLatency.Observe(ev.Duration.Seconds())
	}
}

// DocumentDone counts one finished document.
func (e *Exporter) DocumentDone(status string) {
	e.documents.WithLabelValues(status).Inc()
}

// SetQueueDepth records the number of queued jobs.
func (e *Exporter) SetQueueDepth(n int) {
	e.queueDepth.Set(float64(n))
}

// Registry exposes the underlying registry for tests and extra collectors.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry at /metrics.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
