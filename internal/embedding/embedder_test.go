package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliorag/internal/config"
	"portfoliorag/internal/domain"
)

type fakeEmbedder struct {
	dim  int
	vecs [][]float64
	n    int
	err  error
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := f.vecs[f.n%len(f.vecs)]
	f.n++
	return v, nil
}

func TestLazy_ConstructsOnceUnderConcurrency(t *testing.T) {
	var inits atomic.Int32
	e := Lazy("fake", func() (domain.Embedder, error) {
		inits.Add(1)
		return &fakeEmbedder{dim: 2, vecs: [][]float64{{1, 0}}}, nil
	})
	assert.Equal(t, int32(0), inits.Load())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Dimension()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inits.Load())
	assert.Equal(t, 2, e.Dimension())
	assert.Equal(t, "fake", e.Name())
}

func TestLazy_CachesInitError(t *testing.T) {
	var inits int
	boom := errors.New("no key")
	e := Lazy("broken", func() (domain.Embedder, error) {
		inits++
		return nil, boom
	})

	_, err := e.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, boom)
	_, err = e.Embed(context.Background(), "b")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, inits)
	assert.Zero(t, e.Dimension())
}

func TestLazy_NilProvider(t *testing.T) {
	e := Lazy("nil", func() (domain.Embedder, error) { return nil, nil })
	_, err := e.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestPin(t *testing.T) {
	tests := []struct {
		name    string
		pin     int
		vecs    [][]float64
		wantErr []error
	}{
		{"stable length", 0, [][]float64{{1, 2}, {3, 4}}, []error{nil, nil}},
		{"drift after first", 0, [][]float64{{1, 2}, {3}}, []error{nil, domain.ErrDimensionMismatch}},
		{"fixed up front", 3, [][]float64{{1, 2}}, []error{domain.ErrDimensionMismatch}},
		{"empty vector", 0, [][]float64{{}}, []error{domain.ErrEmbeddingFailed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Pin(&fakeEmbedder{vecs: tt.vecs}, tt.pin)
			for _, want := range tt.wantErr {
				_, err := e.Embed(context.Background(), "x")
				if want == nil {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, want)
				}
			}
		})
	}
}

func TestPin_DimensionAdoptsFirstVector(t *testing.T) {
	e := Pin(&fakeEmbedder{vecs: [][]float64{{1, 2, 3}}}, 0)
	assert.Zero(t, e.Dimension())

	_, err := e.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 3, e.Dimension())
}

type recorder struct {
	calls []string
	errs  []error
}

func (r *recorder) ObserveEmbedding(provider string, err error) {
	r.calls = append(r.calls, provider)
	r.errs = append(r.errs, err)
}

func TestObserve(t *testing.T) {
	rec := &recorder{}
	fail := errors.New("down")

	_, _ = Observe(&fakeEmbedder{vecs: [][]float64{{1}}}, rec).Embed(context.Background(), "x")
	_, _ = Observe(&fakeEmbedder{err: fail}, rec).Embed(context.Background(), "x")

	assert.Equal(t, []string{"fake", "fake"}, rec.calls)
	assert.NoError(t, rec.errs[0])
	assert.ErrorIs(t, rec.errs[1], fail)

	plain := &fakeEmbedder{}
	assert.Same(t, plain, Observe(plain, nil))
}

func TestNew_UnknownType(t *testing.T) {
	e := New(context.Background(), config.EmbedderConfig{Type: "tfidf"}, nil)
	_, err := e.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNew_OllamaPinsDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2]}`))
	}))
	defer srv.Close()

	e := New(context.Background(), config.EmbedderConfig{Type: "ollama", BaseURL: srv.URL, Dimension: 2}, nil)
	assert.Equal(t, "ollama", e.Name())

	vec, err := e.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vec)
	assert.Equal(t, 2, e.Dimension())

	mismatch := New(context.Background(), config.EmbedderConfig{Type: "ollama", BaseURL: srv.URL, Dimension: 768}, nil)
	_, err = mismatch.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
