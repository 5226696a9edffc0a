package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portfoliorag/internal/config"
	"portfoliorag/internal/domain"
	"portfoliorag/internal/embedding/fastembed"
	"portfoliorag/internal/embedding/gemini"
	"portfoliorag/internal/embedding/openai"
)

// New returns the configured provider behind Lazy and Pin. Nothing is
// constructed, and no credentials are read, until the first call.
func New(ctx context.Context, cfg config.EmbedderConfig, logger *zap.Logger) domain.Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Lazy(cfg.Type, func() (domain.Embedder, error) {
		e, err := construct(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("embedding provider ready",
			zap.String("provider", e.Name()),
			zap.String("model", cfg.Model),
			zap.Int("dimension", e.Dimension()))
		return Pin(e, cfg.Dimension), nil
	})
}

func construct(ctx context.Context, cfg config.EmbedderConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Type {
	case "gemini", "":
		return gemini.New(ctx, gemini.Config{
			APIKeyEnv:         cfg.APIKeyEnv,
			Model:             cfg.Model,
			Dimension:         cfg.Dimension,
			RequestsPerMinute: cfg.RequestsPerMinute,
			Endpoint:          cfg.BaseURL,
			Logger:            logger,
		})
	case "openai", "ollama":
		return openai.NewClient(openai.Config{
			Name:              cfg.Type,
			BaseURL:           cfg.BaseURL,
			APIKeyEnv:         cfg.APIKeyEnv,
			Model:             cfg.Model,
			Dimension:         cfg.Dimension,
			Timeout:           time.Duration(cfg.TimeoutSecs) * time.Second,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerMinute: cfg.RequestsPerMinute,
			Logger:            logger,
		})
	case "fastembed":
		return fastembed.New(fastembed.Config{Model: cfg.Model, CacheDir: cfg.CacheDir})
	default:
		return nil, fmt.Errorf("%w: unknown embedder: %s", domain.ErrInvalidConfig, cfg.Type)
	}
}
