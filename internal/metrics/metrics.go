// Package metrics holds the Prometheus instrumentation for retrieval and
// embedding.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the retrieval path.
//
// Metrics:
//   - portfoliorag_retrievals_total{outcome} - retrieval calls by outcome
//   - portfoliorag_retrieval_duration_seconds - end-to-end retrieval latency
//   - portfoliorag_embeddings_total{provider,outcome} - provider calls
//   - portfoliorag_corpus_chunks - chunks in the loaded corpus
type Metrics struct {
	RetrievalsTotal   *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
	EmbeddingsTotal   *prometheus.CounterVec
	CorpusChunks      prometheus.Gauge
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RetrievalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliorag_retrievals_total",
				Help: "Total number of context retrievals",
			},
			[]string{"outcome"},
		),
		RetrievalDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfoliorag_retrieval_duration_seconds",
			Help:    "Duration of context retrieval in seconds, including query embedding",
			Buckets: prometheus.DefBuckets,
		}),
		EmbeddingsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliorag_embeddings_total",
				Help: "Total number of embedding provider calls",
			},
			[]string{"provider", "outcome"},
		),
		CorpusChunks: f.NewGauge(prometheus.GaugeOpts{
			Name: "portfoliorag_corpus_chunks",
			Help: "Number of chunks in the loaded corpus",
		}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveRetrieval records one retrieval.
func (m *Metrics) ObserveRetrieval(elapsed time.Duration, err error) {
	m.RetrievalsTotal.WithLabelValues(outcome(err)).Inc()
	m.RetrievalDuration.Observe(elapsed.Seconds())
}

// ObserveEmbedding records one provider call.
func (m *Metrics) ObserveEmbedding(provider string, err error) {
	m.EmbeddingsTotal.WithLabelValues(provider, outcome(err)).Inc()
}

// ObserveCorpusLoad records the size of a freshly loaded corpus.
func (m *Metrics) ObserveCorpusLoad(chunks int) {
	m.CorpusChunks.Set(float64(chunks))
}
