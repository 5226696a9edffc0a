//go:build !cgo

package fastembed

import (
	"context"
	"errors"
)

// ErrNotAvailable is returned when the binary was built without CGO.
var ErrNotAvailable = errors.New("fastembed: not available (binary built without CGO support)")

// Provider is a stub for non-CGO builds.
type Provider struct{}

// New returns ErrNotAvailable without CGO.
func New(_ Config) (*Provider, error) {
	return nil, ErrNotAvailable
}

func (p *Provider) Name() string { return "fastembed" }

func (p *Provider) Dimension() int { return 0 }

func (p *Provider) Embed(_ context.Context, _ string) ([]float64, error) {
	return nil, ErrNotAvailable
}

func (p *Provider) Close() error { return nil }
