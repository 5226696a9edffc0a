// Package gemini embeds text with the Google Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"portfoliorag/internal/domain"
)

// DefaultModel is the model the site corpus has always been built with.
const DefaultModel = "text-embedding-004"

var knownDimensions = map[string]int{
	"text-embedding-004": 768,
	"embedding-001":      768,
}

// Config configures the Gemini provider.
type Config struct {
	APIKeyEnv string
	Model     string
	// Dimension overrides the known model dimension.
	Dimension         int
	RequestsPerMinute int
	// Endpoint replaces the public API base URL.
	Endpoint string
	Logger   *zap.Logger
}

// Provider implements domain.Embedder over the embedContent method.
type Provider struct {
	svc       *generativelanguage.Service
	model     string
	dimension int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New creates a Gemini provider. The API key is read from cfg.APIKeyEnv.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GEMINI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrInvalidConfig, cfg.APIKeyEnv)
	}
	model := strings.TrimPrefix(cfg.Model, "models/")
	if model == "" {
		model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(key)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating generative language client: %w", err)
	}

	dim := cfg.Dimension
	if dim == 0 {
		dim = knownDimensions[model]
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		svc:       svc,
		model:     model,
		dimension: dim,
		limiter:   limiter,
		logger:    logger.With(zap.String("provider", "gemini"), zap.String("model", model)),
	}, nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Dimension() int { return p.dimension }

func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req := &generativelanguage.EmbedContentRequest{
		Content: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: text}},
		},
	}
	resp, err := p.svc.Models.EmbedContent("models/"+p.model, req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
			p.logger.Warn("embedding request rate limited")
		}
		return nil, fmt.Errorf("%w: gemini: %v", domain.ErrEmbeddingFailed, err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: gemini: no embedding returned", domain.ErrEmbeddingFailed)
	}
	return resp.Embedding.Values, nil
}
