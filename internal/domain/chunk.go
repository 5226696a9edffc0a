package domain

import "fmt"

// ContentType classifies where a chunk came from.
type ContentType string

const (
	ContentProject    ContentType = "project"
	ContentCareer     ContentType = "career"
	ContentPage       ContentType = "page"
	ContentSocial     ContentType = "social"
	ContentNavigation ContentType = "navigation"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentProject, ContentCareer, ContentPage, ContentSocial, ContentNavigation:
		return true
	}
	return false
}

// Metadata is informative only; retrieval never reads it.
type Metadata struct {
	ContentType ContentType `json:"contentType,omitempty"`
	Enrichment  []string    `json:"enrichment,omitempty"`
}

// ContentChunk is one retrievable unit of knowledge about the site owner.
type ContentChunk struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Validate checks the non-empty field invariants.
func (c ContentChunk) Validate() error {
	switch {
	case c.Slug == "":
		return fmt.Errorf("%w: empty slug", ErrInvalidChunk)
	case c.Title == "":
		return fmt.Errorf("%w: %s: empty title", ErrInvalidChunk, c.Slug)
	case c.Content == "":
		return fmt.Errorf("%w: %s: empty content", ErrInvalidChunk, c.Slug)
	}
	if c.Metadata != nil && c.Metadata.ContentType != "" && !c.Metadata.ContentType.Valid() {
		return fmt.Errorf("%w: %s: unknown content type %q", ErrInvalidChunk, c.Slug, c.Metadata.ContentType)
	}
	return nil
}

// EmbeddingChunk is a chunk with its embedding vector. This is the corpus
// file record.
type EmbeddingChunk struct {
	ContentChunk
	Embedding []float64 `json:"embedding"`
}

// ScoredChunk is a retrieval result. It deliberately carries no vector.
type ScoredChunk struct {
	ContentChunk
	Score float64 `json:"score"`
}

// CheckChunks validates every chunk and the slug uniqueness invariant.
func CheckChunks(chunks []ContentChunk) error {
	seen := make(map[string]int, len(chunks))
	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if j, dup := seen[c.Slug]; dup {
			return fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateSlug, c.Slug, j, i)
		}
		seen[c.Slug] = i
	}
	return nil
}
