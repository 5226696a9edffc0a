// Package builder runs the offline corpus build: extract every source,
// embed each chunk in order and persist the result in one write.
package builder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/extract"
)

// Builder produces a corpus from content sources.
type Builder struct {
	extractors []domain.Extractor
	embedder   domain.Embedder
	store      domain.CorpusStore
	logger     *zap.Logger
}

// New creates a Builder. A nil logger discards output.
func New(extractors []domain.Extractor, embedder domain.Embedder, store domain.CorpusStore, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{extractors: extractors, embedder: embedder, store: store, logger: logger}
}

// Build extracts, embeds and saves the corpus. Any failure aborts the run
// before the store is touched, so the previous corpus stays in place.
func (b *Builder) Build(ctx context.Context) (domain.SaveReport, error) {
	start := time.Now()

	chunks, err := extract.ExtractAll(b.extractors, b.logger)
	if err != nil {
		return domain.SaveReport{}, fmt.Errorf("extracting content: %w", err)
	}
	if len(chunks) == 0 {
		return domain.SaveReport{}, fmt.Errorf("extracting content: %w", domain.ErrEmptyCorpus)
	}
	b.logger.Info("generating embeddings",
		zap.Int("chunks", len(chunks)),
		zap.String("provider", b.embedder.Name()))

	corpus := make([]domain.EmbeddingChunk, 0, len(chunks))
	for i, c := range chunks {
		b.logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(chunks), c.Slug))
		vec, err := b.embedder.Embed(ctx, c.Content)
		if err != nil {
			return domain.SaveReport{}, fmt.Errorf("embedding %s: %w", c.Slug, err)
		}
		corpus = append(corpus, domain.EmbeddingChunk{ContentChunk: c, Embedding: vec})
	}

	report, err := b.store.Save(ctx, corpus)
	if err != nil {
		return domain.SaveReport{}, fmt.Errorf("saving corpus: %w", err)
	}
	b.logger.Info("corpus saved",
		zap.String("location", report.Location),
		zap.Int("chunks", report.Chunks),
		zap.String("size", fmt.Sprintf("%.2f KB", float64(report.Bytes)/1024)),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}
