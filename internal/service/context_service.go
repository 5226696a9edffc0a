// Package service is the query-side entry point: embed a visitor's
// message, retrieve the closest chunks and format them for a prompt.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/retriever"
)

// RetrievalObserver is told the outcome and latency of each query.
type RetrievalObserver interface {
	ObserveRetrieval(elapsed time.Duration, err error)
}

// Result is one answered query.
type Result struct {
	Results []domain.ScoredChunk `json:"results"`
	Context string               `json:"context"`
}

// ContextService answers retrieval queries. It is safe for concurrent use.
type ContextService struct {
	embedder  domain.Embedder
	retriever *retriever.Retriever
	topK      int
	obs       RetrievalObserver
	logger    *zap.Logger
}

// NewContextService wires the query embedder to the retriever. The embedder
// must be the provider the corpus was built with. defaultTopK applies when
// a query passes topK <= 0.
func NewContextService(embedder domain.Embedder, r *retriever.Retriever, defaultTopK int, obs RetrievalObserver, logger *zap.Logger) *ContextService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextService{embedder: embedder, retriever: r, topK: defaultTopK, obs: obs, logger: logger}
}

// Query embeds text and returns the ranked chunks with their formatted
// context block. Empty text is rejected with ErrEmptyQuery.
func (s *ContextService) Query(ctx context.Context, text string, topK int) (Result, error) {
	start := time.Now()
	res, err := s.query(ctx, text, topK)
	if s.obs != nil {
		s.obs.ObserveRetrieval(time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn("context retrieval failed", zap.Error(err))
		return Result{}, err
	}
	s.logger.Debug("context retrieved",
		zap.Int("results", len(res.Results)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (s *ContextService) query(ctx context.Context, text string, topK int) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.topK
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("embedding query: %w", err)
	}
	results, err := s.retriever.Retrieve(ctx, vec, topK)
	if err != nil {
		return Result{}, err
	}
	return Result{Results: results, Context: retriever.FormatContext(results)}, nil
}

// Warm loads the corpus ahead of the first query.
func (s *ContextService) Warm(ctx context.Context) error {
	_, err := s.retriever.Corpus(ctx)
	return err
}
