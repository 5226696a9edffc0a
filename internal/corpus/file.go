// Package corpus persists the embedded corpus and checks its invariants.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"portfoliorag/internal/domain"
)

// FileStore keeps the corpus as a single indented JSON array.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path is the corpus file location.
func (s *FileStore) Path() string { return s.path }

// Save validates the corpus and replaces the file atomically, so a reader
// never sees a partially written corpus.
func (s *FileStore) Save(_ context.Context, corpus []domain.EmbeddingChunk) (domain.SaveReport, error) {
	if err := Validate(corpus); err != nil {
		return domain.SaveReport{}, err
	}
	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return domain.SaveReport{}, fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.SaveReport{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return domain.SaveReport{}, fmt.Errorf("writing corpus: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return domain.SaveReport{}, fmt.Errorf("writing corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return domain.SaveReport{}, fmt.Errorf("writing corpus: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return domain.SaveReport{}, err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return domain.SaveReport{}, fmt.Errorf("replacing corpus: %w", err)
	}

	return domain.SaveReport{Location: s.path, Chunks: len(corpus), Bytes: int64(len(data))}, nil
}

// Load reads and validates the corpus file. A missing file is reported
// as ErrEmptyCorpus wrapped around the not-exist error.
func (s *FileStore) Load(_ context.Context) ([]domain.EmbeddingChunk, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist (run the build first): %w", domain.ErrEmptyCorpus, s.path, err)
		}
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	var corpus []domain.EmbeddingChunk
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	if err := Validate(corpus); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return corpus, nil
}
