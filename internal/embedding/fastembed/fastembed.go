//go:build cgo

// Package fastembed embeds text locally with ONNX models.
package fastembed

import (
	"context"
	"fmt"
	"sync"

	fastembed "github.com/anush008/fastembed-go"

	"portfoliorag/internal/domain"
)

// Provider embeds text with a local ONNX model.
type Provider struct {
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int
	mu        sync.Mutex
}

var modelMapping = map[string]fastembed.EmbeddingModel{
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"all-MiniLM-L6-v2":                       fastembed.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
}

var modelDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.AllMiniLML6V2: 384,
	fastembed.BGESmallENV15: 384,
	fastembed.BGEBaseENV15:  768,
}

// New loads the model, downloading it into cfg.CacheDir on first use.
func New(cfg Config) (*Provider, error) {
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	model, ok := modelMapping[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported fastembed model %q", domain.ErrInvalidConfig, name)
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = "local_cache"
	}

	showProgress := false
	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            512,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}
	return &Provider{model: flagEmbed, modelName: name, dimension: modelDimensions[model]}, nil
}

func (p *Provider) Name() string { return "fastembed" }

func (p *Provider) Dimension() int { return p.dimension }

// Embed runs the model on text and widens the result to float64.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	out, err := p.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: fastembed: %v", domain.ErrEmbeddingFailed, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: fastembed: no embedding returned", domain.ErrEmbeddingFailed)
	}
	vec := make([]float64, len(out[0]))
	for i, v := range out[0] {
		vec[i] = float64(v)
	}
	return vec, nil
}

// Close releases the ONNX session.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model != nil {
		return p.model.Destroy()
	}
	return nil
}
