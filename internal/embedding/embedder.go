// Package embedding adapts embedding providers to the domain contract: a
// lazily initialised process-wide provider whose vector length is pinned.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"portfoliorag/internal/domain"
)

// InitFunc constructs a provider on first use.
type InitFunc func() (domain.Embedder, error)

type lazyEmbedder struct {
	name string
	init InitFunc

	once  sync.Once
	inner domain.Embedder
	err   error
}

// Lazy defers provider construction until the first call that needs it.
// Construction runs at most once; its outcome, including an error, is kept
// for the life of the value.
func Lazy(name string, init InitFunc) domain.Embedder {
	return &lazyEmbedder{name: name, init: init}
}

func (l *lazyEmbedder) get() (domain.Embedder, error) {
	l.once.Do(func() {
		l.inner, l.err = l.init()
		if l.err == nil && l.inner == nil {
			l.err = fmt.Errorf("%w: %s provider constructor returned nil", domain.ErrInvalidConfig, l.name)
		}
	})
	return l.inner, l.err
}

func (l *lazyEmbedder) Name() string { return l.name }

// Dimension initialises the provider if needed and reports 0 on failure.
func (l *lazyEmbedder) Dimension() int {
	e, err := l.get()
	if err != nil {
		return 0
	}
	return e.Dimension()
}

func (l *lazyEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e, err := l.get()
	if err != nil {
		return nil, fmt.Errorf("initializing %s embedder: %w", l.name, err)
	}
	return e.Embed(ctx, text)
}

type pinnedEmbedder struct {
	inner domain.Embedder

	mu  sync.RWMutex
	dim int
}

// Pin guarantees every vector returned by e has the same length. A positive
// dim fixes it up front; zero adopts the length of the first vector.
// A provider that drifts returns ErrDimensionMismatch.
func Pin(e domain.Embedder, dim int) domain.Embedder {
	return &pinnedEmbedder{inner: e, dim: dim}
}

func (p *pinnedEmbedder) Name() string { return p.inner.Name() }

func (p *pinnedEmbedder) Dimension() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.dim > 0 {
		return p.dim
	}
	return p.inner.Dimension()
}

func (p *pinnedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty vector", domain.ErrEmbeddingFailed, p.inner.Name())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dim == 0 {
		p.dim = len(vec)
	}
	if len(vec) != p.dim {
		return nil, fmt.Errorf("%w: %s returned %d values, want %d",
			domain.ErrDimensionMismatch, p.inner.Name(), len(vec), p.dim)
	}
	return vec, nil
}

// Observer is told the outcome of every embedding call.
type Observer interface {
	ObserveEmbedding(provider string, err error)
}

type observedEmbedder struct {
	domain.Embedder
	obs Observer
}

// Observe reports each Embed outcome on e to obs.
func Observe(e domain.Embedder, obs Observer) domain.Embedder {
	if obs == nil {
		return e
	}
	return &observedEmbedder{Embedder: e, obs: obs}
}

func (o *observedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := o.Embedder.Embed(ctx, text)
	o.obs.ObserveEmbedding(o.Name(), err)
	return vec, err
}
