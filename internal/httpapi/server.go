// Package httpapi exposes context retrieval over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/service"
)

// Querier answers retrieval queries.
type Querier interface {
	Query(ctx context.Context, text string, topK int) (service.Result, error)
}

// Server provides HTTP endpoints for context retrieval.
type Server struct {
	echo    *echo.Echo
	querier Querier
	logger  *zap.Logger
	addr    string
}

// NewServer creates a new HTTP server. A nil gatherer leaves /metrics
// unregistered.
func NewServer(q Querier, gatherer prometheus.Gatherer, logger *zap.Logger, addr string) (*Server, error) {
	if q == nil {
		return nil, fmt.Errorf("querier cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{echo: e, querier: q, logger: logger, addr: addr}
	s.echo.GET("/health", s.handleHealth)
	if gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	v1 := s.echo.Group("/api/v1")
	v1.POST("/context", s.handleContext)
	return s, nil
}

// ContextRequest is the request body for POST /api/v1/context.
type ContextRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// ContextResult is one ranked chunk in a response.
type ContextResult struct {
	Slug    string  `json:"slug"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// ContextResponse is the response body for POST /api/v1/context.
type ContextResponse struct {
	Results []ContextResult `json:"results"`
	Context string          `json:"context"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleContext(c echo.Context) error {
	var req ContextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.querier.Query(c.Request().Context(), req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
		}
		s.logger.Error("context retrieval failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "context is temporarily unavailable")
	}

	out := ContextResponse{Results: make([]ContextResult, len(res.Results)), Context: res.Context}
	for i, r := range res.Results {
		out.Results[i] = ContextResult{Slug: r.Slug, Title: r.Title, Content: r.Content, Score: r.Score}
	}
	return c.JSON(http.StatusOK, out)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
