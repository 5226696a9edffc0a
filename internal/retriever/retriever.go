// Package retriever serves ranked context from a corpus loaded once per
// process and shared read-only across requests.
package retriever

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"portfoliorag/internal/corpus"
	"portfoliorag/internal/domain"
	"portfoliorag/internal/ranking"
)

// NoContextFound is what FormatContext renders for an empty result list.
const NoContextFound = "No relevant context found."

const sectionSeparator = "\n\n---\n\n"

// LoadObserver is told the size of each successfully loaded corpus.
type LoadObserver interface {
	ObserveCorpusLoad(chunks int)
}

// Retriever ranks queries against a lazily loaded corpus.
type Retriever struct {
	store  domain.CorpusStore
	engine *ranking.Engine
	logger *zap.Logger
	obs    LoadObserver

	group  singleflight.Group
	corpus atomic.Pointer[[]domain.EmbeddingChunk]
}

// Option customises a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLoadObserver reports corpus loads to obs.
func WithLoadObserver(obs LoadObserver) Option {
	return func(r *Retriever) { r.obs = obs }
}

// New creates a Retriever. Nothing is loaded until the first request.
func New(store domain.CorpusStore, engine *ranking.Engine, opts ...Option) *Retriever {
	if engine == nil {
		engine = ranking.NewEngine()
	}
	r := &Retriever{store: store, engine: engine, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Corpus returns the shared corpus, loading it on first use. Concurrent
// first callers share one load. A failed load is not kept, so the next
// call tries again.
func (r *Retriever) Corpus(ctx context.Context) ([]domain.EmbeddingChunk, error) {
	if c := r.corpus.Load(); c != nil {
		return *c, nil
	}
	v, err, _ := r.group.Do("corpus", func() (any, error) {
		if c := r.corpus.Load(); c != nil {
			return *c, nil
		}
		// The load is shared, so one caller's cancellation must not fail
		// the others.
		loaded, err := r.store.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if err := corpus.Validate(loaded); err != nil {
			return nil, err
		}
		r.corpus.Store(&loaded)
		r.logger.Info("corpus loaded",
			zap.Int("chunks", len(loaded)),
			zap.Int("dimension", corpus.Dimension(loaded)))
		if r.obs != nil {
			r.obs.ObserveCorpusLoad(len(loaded))
		}
		return loaded, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return v.([]domain.EmbeddingChunk), nil
}

// Dimension is the corpus embedding length, or 0 before a successful load.
func (r *Retriever) Dimension() int {
	if c := r.corpus.Load(); c != nil {
		return corpus.Dimension(*c)
	}
	return 0
}

// Retrieve returns at most topK chunks ranked against query, without
// embeddings. topK <= 0 selects the ranking default.
func (r *Retriever) Retrieve(ctx context.Context, query []float64, topK int) ([]domain.ScoredChunk, error) {
	c, err := r.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	if dim := corpus.Dimension(c); len(query) != dim {
		return nil, fmt.Errorf("%w: query has %d values, corpus has %d", domain.ErrDimensionMismatch, len(query), dim)
	}
	return r.engine.Rank(query, c, topK)
}

// FormatContext renders results as numbered, titled sections for a prompt.
func FormatContext(results []domain.ScoredChunk) string {
	if len(results) == 0 {
		return NoContextFound
	}
	sections := make([]string, len(results))
	for i, res := range results {
		sections[i] = fmt.Sprintf("[%d] %s\n%s", i+1, res.Title, res.Content)
	}
	return strings.Join(sections, sectionSeparator)
}
