package corpus

import (
	"fmt"

	"portfoliorag/internal/domain"
)

// Validate checks that corpus is non-empty, that every chunk is well formed
// with a unique slug, and that all embeddings share one non-zero length.
func Validate(corpus []domain.EmbeddingChunk) error {
	if len(corpus) == 0 {
		return domain.ErrEmptyCorpus
	}
	chunks := make([]domain.ContentChunk, len(corpus))
	for i, c := range corpus {
		chunks[i] = c.ContentChunk
	}
	if err := domain.CheckChunks(chunks); err != nil {
		return err
	}
	dim := len(corpus[0].Embedding)
	if dim == 0 {
		return fmt.Errorf("%w: %s has an empty embedding", domain.ErrDimensionMismatch, corpus[0].Slug)
	}
	for _, c := range corpus[1:] {
		if len(c.Embedding) != dim {
			return fmt.Errorf("%w: %s has %d values, corpus has %d",
				domain.ErrDimensionMismatch, c.Slug, len(c.Embedding), dim)
		}
	}
	return nil
}

// Dimension is the shared embedding length of a validated corpus.
func Dimension(corpus []domain.EmbeddingChunk) int {
	if len(corpus) == 0 {
		return 0
	}
	return len(corpus[0].Embedding)
}
