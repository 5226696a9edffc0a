package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/metrics"
	"portfoliorag/internal/service"
)

type stubQuerier struct {
	gotText string
	gotTopK int
	res     service.Result
	err     error
}

func (s *stubQuerier) Query(_ context.Context, text string, topK int) (service.Result, error) {
	s.gotText, s.gotTopK = text, topK
	if s.err != nil {
		return service.Result{}, s.err
	}
	if strings.TrimSpace(text) == "" {
		return service.Result{}, domain.ErrEmptyQuery
	}
	return s.res, nil
}

func setupTestServer(t *testing.T, q Querier) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	s, err := NewServer(q, reg, zap.NewNop(), ":0")
	require.NoError(t, err)
	return s
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/context", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_NilQuerier(t *testing.T) {
	_, err := NewServer(nil, nil, nil, ":0")
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t, &stubQuerier{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleContext(t *testing.T) {
	q := &stubQuerier{res: service.Result{
		Results: []domain.ScoredChunk{{
			ContentChunk: domain.ContentChunk{Slug: "/", Title: "Homepage", Content: "Hi."},
			Score:        0.8,
		}},
		Context: "[1] Homepage\nHi.",
	}}
	s := setupTestServer(t, q)

	rec := post(t, s, `{"query":"who are you","top_k":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "who are you", q.gotText)
	assert.Equal(t, 5, q.gotTopK)

	var resp ContextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, ContextResult{Slug: "/", Title: "Homepage", Content: "Hi.", Score: 0.8}, resp.Results[0])
	assert.Equal(t, "[1] Homepage\nHi.", resp.Context)
	assert.NotContains(t, rec.Body.String(), "embedding")
}

func TestHandleContext_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"empty query", `{"query":"  "}`, nil, http.StatusBadRequest},
		{"malformed body", `{"query":`, nil, http.StatusBadRequest},
		{"retrieval failure", `{"query":"hi"}`, errors.New("secret internal detail"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, setupTestServer(t, &stubQuerier{err: tt.err}), tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret internal detail")
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t, &stubQuerier{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfoliorag_corpus_chunks")
}
