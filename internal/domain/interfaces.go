package domain

import "context"

// Embedder converts free text into a fixed-length numeric vector.
type Embedder interface {
	Name() string
	// Dimension is the vector length the embedder produces, or 0 when it
	// is not known until the first vector comes back.
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Extractor turns one content source into zero or more chunks.
// A missing optional source yields nil, nil.
type Extractor interface {
	Name() string
	Extract() ([]ContentChunk, error)
}

// CorpusStore persists and loads a whole corpus. Save replaces any prior
// corpus wholesale.
type CorpusStore interface {
	Save(ctx context.Context, corpus []EmbeddingChunk) (SaveReport, error)
	Load(ctx context.Context) ([]EmbeddingChunk, error)
}

// SaveReport describes a persisted corpus.
type SaveReport struct {
	Location string
	Chunks   int
	Bytes    int64
}

// PostProcessor reorders ranked results after the similarity sort.
type PostProcessor interface {
	Name() string
	Process(results []ScoredChunk) []ScoredChunk
}
