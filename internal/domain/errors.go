package domain

import "errors"

var (
	// ErrDimensionMismatch indicates vectors of different lengths were compared
	// or mixed in one corpus.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrDuplicateSlug indicates two chunks in one corpus share a slug.
	ErrDuplicateSlug = errors.New("duplicate chunk slug")

	// ErrEmptyCorpus indicates a corpus with no chunks.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrInvalidChunk indicates a chunk missing a required field.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidConfig indicates missing or unusable configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates the provider could not embed a text.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrInvalidSource indicates a content source failed schema validation.
	ErrInvalidSource = errors.New("invalid content source")

	// ErrEmptyQuery indicates a retrieval query with no text.
	ErrEmptyQuery = errors.New("empty query")
)
