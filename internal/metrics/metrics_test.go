package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRetrieval(10*time.Millisecond, nil)
	m.ObserveRetrieval(time.Millisecond, errors.New("x"))
	m.ObserveRetrieval(time.Millisecond, nil)
	m.ObserveEmbedding("gemini", nil)
	m.ObserveCorpusLoad(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RetrievalsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetrievalsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingsTotal.WithLabelValues("gemini", "success")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.CorpusChunks))

	count, err := testutil.GatherAndCount(reg, "portfoliorag_retrieval_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
