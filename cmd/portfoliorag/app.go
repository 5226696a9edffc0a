package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"portfoliorag/internal/builder"
	"portfoliorag/internal/config"
	"portfoliorag/internal/corpus"
	corpusqdrant "portfoliorag/internal/corpus/qdrant"
	"portfoliorag/internal/domain"
	"portfoliorag/internal/embedding"
	"portfoliorag/internal/extract"
	"portfoliorag/internal/metrics"
	"portfoliorag/internal/ranking"
	"portfoliorag/internal/retriever"
	"portfoliorag/internal/service"
	"portfoliorag/internal/sources"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	embedder domain.Embedder
	store    domain.CorpusStore
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}
	a.embedder = embedding.Observe(embedding.New(ctx, cfg.Embedder, logger), a.metrics)

	switch cfg.Corpus.Type {
	case "file", "":
		a.store = corpus.NewFileStore(cfg.CorpusPath())
	case "qdrant":
		if cfg.Corpus.Qdrant == nil {
			return nil, fmt.Errorf("%w: qdrant corpus config missing", domain.ErrInvalidConfig)
		}
		q := cfg.Corpus.Qdrant
		st, err := corpusqdrant.New(corpusqdrant.Config{
			Host:       q.Host,
			Port:       q.Port,
			APIKeyEnv:  q.APIKeyEnv,
			Collection: q.Collection,
			UseTLS:     q.UseTLS,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.store = st
		a.closers = append(a.closers, st.Close)
	default:
		return nil, fmt.Errorf("%w: unknown corpus store %q", domain.ErrInvalidConfig, cfg.Corpus.Type)
	}
	return a, nil
}

func (a *app) paths() extract.Paths {
	s := a.cfg.Sources
	return extract.Paths{
		Home:     s.Home,
		Privacy:  s.Privacy,
		Projects: s.Projects,
		Career:   s.Career,
		Socials:  s.Socials,
		Routes:   s.Routes,
		Resume:   s.Resume,
	}.Resolve(s.Root)
}

func (a *app) owner() extract.Owner {
	o := a.cfg.Owner
	return extract.Owner{Name: o.Name, Location: o.Location, Headline: o.Headline, ResumeURL: o.ResumeURL}
}

// builder writes to the configured store, or to memory for a dry run.
func (a *app) builder(dry bool) *builder.Builder {
	var store domain.CorpusStore = a.store
	if dry {
		store = corpus.NewMemoryStore()
	}
	set := extract.NewSet(a.owner(), a.paths(), a.logger)
	return builder.New(set.Extractors(), a.embedder, store, a.logger)
}

// engine builds the ranking engine with the configured recency passes.
func (a *app) engine() (*ranking.Engine, error) {
	var passes []domain.PostProcessor
	for _, rc := range a.cfg.Retrieval.Recency {
		order := rc.Order
		if rc.FromCareer {
			var err error
			if order, err = a.careerOrder(); err != nil {
				return nil, err
			}
		}
		passes = append(passes, ranking.NewRecencyOverride(rc.Name, rc.Prefix, order))
	}
	return ranking.NewEngine(passes...), nil
}

func (a *app) careerOrder() ([]string, error) {
	path := a.paths().Career
	if path == "" {
		return nil, nil
	}
	var career sources.Career
	found, err := sources.LoadOptionalJSON(path, &career)
	if err != nil {
		return nil, fmt.Errorf("loading recency order: %w", err)
	}
	if !found {
		a.logger.Warn("career source missing, recency order falls back to corpus order", zap.String("path", path))
		return nil, nil
	}
	return extract.RecencyOrder(career), nil
}

func (a *app) service() (*service.ContextService, error) {
	eng, err := a.engine()
	if err != nil {
		return nil, err
	}
	r := retriever.New(a.store, eng,
		retriever.WithLogger(a.logger),
		retriever.WithLoadObserver(a.metrics))
	return service.NewContextService(a.embedder, r, a.cfg.Retrieval.TopK, a.metrics, a.logger), nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("closing resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
