package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliorag/internal/domain"
)

type fakeClient struct {
	exists  bool
	deleted int
	created *qdrant.CreateCollection
	points  []*qdrant.PointStruct
	scrolls int
	err     error
	// flat serves vectors in the deprecated data field instead of dense.
	flat bool
}

func (f *fakeClient) CollectionExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeClient) DeleteCollection(_ context.Context, _ string) error {
	f.deleted++
	f.points = nil
	return nil
}

func (f *fakeClient) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	f.exists = true
	return nil
}

func (f *fakeClient) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.points = append(f.points, req.Points...)
	return &qdrant.UpdateResult{}, nil
}

// ScrollAndOffset serves two points per page, newest inserted first, so
// Load has to restore order from the payload.
func (f *fakeClient) ScrollAndOffset(_ context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	start := 0
	if req.Offset != nil {
		start = int(req.Offset.GetNum())
	}
	f.scrolls++
	var page []*qdrant.RetrievedPoint
	for i := start; i < len(f.points) && i < start+2; i++ {
		p := f.points[len(f.points)-1-i]
		page = append(page, &qdrant.RetrievedPoint{
			Id:      p.Id,
			Payload: p.Payload,
			Vectors: &qdrant.VectorsOutput{VectorsOptions: &qdrant.VectorsOutput_Vector{
				Vector: f.vectorOutput(p.GetVectors().GetVector()),
			}},
		})
	}
	if start+2 >= len(f.points) {
		return page, nil, nil
	}
	return page, qdrant.NewIDNum(uint64(start + 2)), nil
}

func (f *fakeClient) vectorOutput(in *qdrant.Vector) *qdrant.VectorOutput {
	data := in.GetDense().GetData()
	if len(data) == 0 {
		data = in.GetData()
	}
	if f.flat {
		return &qdrant.VectorOutput{Data: data}
	}
	return &qdrant.VectorOutput{Vector: &qdrant.VectorOutput_Dense{Dense: &qdrant.DenseVector{Data: data}}}
}

func (f *fakeClient) Close() error { return nil }

func sample() []domain.EmbeddingChunk {
	return []domain.EmbeddingChunk{
		{ContentChunk: domain.ContentChunk{Slug: "/", Title: "Home", Content: "hi",
			Metadata: &domain.Metadata{ContentType: domain.ContentPage}}, Embedding: []float64{1, 0}},
		{ContentChunk: domain.ContentChunk{Slug: "projects:a", Title: "A", Content: "a",
			Metadata: &domain.Metadata{ContentType: domain.ContentProject, Enrichment: []string{"Go", "gRPC"}}}, Embedding: []float64{0.5, 0.25}},
		{ContentChunk: domain.ContentChunk{Slug: "career:x-y", Title: "X", Content: "x"}, Embedding: []float64{0, 1}},
	}
}

func TestStore_LoadsFlatVectors(t *testing.T) {
	fc := &fakeClient{flat: true}
	s := newStore(fc, Config{Host: "localhost", Collection: "portfolio"}, nil)

	_, err := s.Save(context.Background(), sample())
	require.NoError(t, err)
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestToPoint_WritesDenseVector(t *testing.T) {
	p := toPoint(0, sample()[1])
	vec := p.GetVectors().GetVector()
	data := vec.GetDense().GetData()
	if len(data) == 0 {
		data = vec.GetData()
	}
	assert.Equal(t, []float32{0.5, 0.25}, data)

	_, c := fromPoint(&qdrant.RetrievedPoint{
		Payload: p.Payload,
		Vectors: &qdrant.VectorsOutput{VectorsOptions: &qdrant.VectorsOutput_Vector{
			Vector: &qdrant.VectorOutput{Vector: &qdrant.VectorOutput_Dense{Dense: &qdrant.DenseVector{Data: data}}},
		}},
	})
	assert.Equal(t, []float64{0.5, 0.25}, c.Embedding)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	fc := &fakeClient{exists: true}
	s := newStore(fc, Config{Host: "localhost", Port: 6334, Collection: "portfolio"}, nil)

	report, err := s.Save(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, 1, fc.deleted)
	assert.Equal(t, "portfolio", fc.created.CollectionName)
	assert.Equal(t, "qdrant://localhost:6334/portfolio", report.Location)
	assert.Equal(t, 3, report.Chunks)
	assert.Len(t, fc.points, 3)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
	assert.Equal(t, 2, fc.scrolls)
}

func TestStore_SaveSkipsDeleteForNewCollection(t *testing.T) {
	fc := &fakeClient{}
	s := newStore(fc, Config{Host: "h", Collection: "c"}, nil)

	_, err := s.Save(context.Background(), sample())
	require.NoError(t, err)
	assert.Zero(t, fc.deleted)
}

func TestStore_SaveRejectsInvalidCorpus(t *testing.T) {
	fc := &fakeClient{}
	s := newStore(fc, Config{Host: "h", Collection: "c"}, nil)

	_, err := s.Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
	assert.Nil(t, fc.created)
}

func TestStore_LoadEmptyCollection(t *testing.T) {
	s := newStore(&fakeClient{}, Config{Host: "h", Collection: "c"}, nil)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestStore_LoadPropagatesClientError(t *testing.T) {
	boom := errors.New("unavailable")
	s := newStore(&fakeClient{err: boom}, Config{Host: "h", Collection: "c"}, nil)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPointID_Deterministic(t *testing.T) {
	assert.Equal(t, PointID("projects:a"), PointID("projects:a"))
	assert.NotEqual(t, PointID("projects:a"), PointID("projects:b"))
}

func TestNew_RequiresHostAndCollection(t *testing.T) {
	_, err := New(Config{Collection: "c"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
