// Package ranking scores a corpus against a query vector by cosine
// similarity and selects the top results.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"portfoliorag/internal/domain"
)

// DefaultTopK is used when a caller asks for zero or fewer results.
const DefaultTopK = 3

// CosineSimilarity is dot(a,b)/(|a||b|). Vectors of different length are
// an error; a zero-magnitude vector scores 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Engine is an exact full-scan ranker with optional post-processing passes.
type Engine struct {
	passes []domain.PostProcessor
}

// NewEngine returns an engine that applies passes, in order, to each
// selected result list.
func NewEngine(passes ...domain.PostProcessor) *Engine {
	return &Engine{passes: passes}
}

// Passes lists the configured post-processing pass names.
func (e *Engine) Passes() []string {
	names := make([]string, len(e.passes))
	for i, p := range e.passes {
		names[i] = p.Name()
	}
	return names
}

// Rank scores every chunk, sorts descending with ties kept in corpus order,
// keeps the first topK and runs the post-processing passes. Results carry
// no embedding.
func (e *Engine) Rank(query []float64, corpus []domain.EmbeddingChunk, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := make([]domain.ScoredChunk, len(corpus))
	for i, c := range corpus {
		s, err := CosineSimilarity(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", c.Slug, err)
		}
		scored[i] = domain.ScoredChunk{ContentChunk: c.ContentChunk, Score: s}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK < len(scored) {
		scored = scored[:topK]
	}
	for _, p := range e.passes {
		scored = p.Process(scored)
	}
	return scored, nil
}
