package corpus

import (
	"context"
	"sync"

	"portfoliorag/internal/domain"
)

// MemoryStore holds the corpus in process. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	corpus []domain.EmbeddingChunk
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Save validates and replaces the held corpus.
func (s *MemoryStore) Save(_ context.Context, corpus []domain.EmbeddingChunk) (domain.SaveReport, error) {
	if err := Validate(corpus); err != nil {
		return domain.SaveReport{}, err
	}
	cp := make([]domain.EmbeddingChunk, len(corpus))
	copy(cp, corpus)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = cp
	return domain.SaveReport{
		Location: "memory",
		Chunks:   len(cp),
		Bytes:    int64(len(cp) * Dimension(cp) * 8),
	}, nil
}

// Load returns a copy of the held corpus, or ErrEmptyCorpus before the
// first Save.
func (s *MemoryStore) Load(_ context.Context) ([]domain.EmbeddingChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.corpus) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	cp := make([]domain.EmbeddingChunk, len(s.corpus))
	copy(cp, s.corpus)
	return cp, nil
}
