// Package qdrant stores the corpus in a Qdrant collection. Save replaces
// the collection; Load scrolls every point back in corpus order.
package qdrant

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"portfoliorag/internal/corpus"
	"portfoliorag/internal/domain"
)

const (
	upsertBatch = 64
	scrollBatch = 256
)

// Config contains connection details for the collection.
type Config struct {
	Host       string
	Port       int
	APIKeyEnv  string
	Collection string
	UseTLS     bool
}

// client is the subset of *qdrant.Client the store uses.
type client interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	DeleteCollection(ctx context.Context, name string) error
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	ScrollAndOffset(ctx context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error)
	Close() error
}

// Store is a corpus store backed by one Qdrant collection.
type Store struct {
	client     client
	collection string
	location   string
	logger     *zap.Logger
}

// New connects to Qdrant over gRPC.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Host == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant host and collection are required", domain.ErrInvalidConfig)
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	var apiKey string
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: apiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	return newStore(c, cfg, logger), nil
}

func newStore(c client, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:     c,
		collection: cfg.Collection,
		location:   fmt.Sprintf("qdrant://%s:%d/%s", cfg.Host, cfg.Port, cfg.Collection),
		logger:     logger,
	}
}

// Close releases the gRPC connection.
func (s *Store) Close() error { return s.client.Close() }

// PointID is the deterministic point ID for a slug.
func PointID(slug string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("portfoliorag:"+slug)).String()
}

// Save drops and recreates the collection, then upserts every chunk.
func (s *Store) Save(ctx context.Context, chunks []domain.EmbeddingChunk) (domain.SaveReport, error) {
	if err := corpus.Validate(chunks); err != nil {
		return domain.SaveReport{}, err
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return domain.SaveReport{}, fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return domain.SaveReport{}, fmt.Errorf("deleting collection %s: %w", s.collection, err)
		}
	}
	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(corpus.Dimension(chunks)),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return domain.SaveReport{}, fmt.Errorf("creating collection %s: %w", s.collection, err)
	}

	var bytes int64
	for start := 0; start < len(chunks); start += upsertBatch {
		end := min(start+upsertBatch, len(chunks))
		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			p := toPoint(i, chunks[i])
			bytes += int64(len(chunks[i].Embedding) * 4)
			points = append(points, p)
		}
		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		}); err != nil {
			return domain.SaveReport{}, fmt.Errorf("upserting %d points: %w", len(points), err)
		}
		s.logger.Debug("upserted points", zap.Int("from", start), zap.Int("to", end))
	}

	return domain.SaveReport{Location: s.location, Chunks: len(chunks), Bytes: bytes}, nil
}

// Load scrolls the whole collection and restores the saved order.
func (s *Store) Load(ctx context.Context) ([]domain.EmbeddingChunk, error) {
	type ordered struct {
		order int64
		chunk domain.EmbeddingChunk
	}
	var all []ordered
	var offset *qdrant.PointId
	for {
		points, next, err := s.client.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollBatch)),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scrolling %s: %w", s.collection, err)
		}
		for _, p := range points {
			order, c := fromPoint(p)
			all = append(all, ordered{order, c})
		}
		if next == nil || len(points) == 0 {
			break
		}
		offset = next
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].order < all[j].order })
	chunks := make([]domain.EmbeddingChunk, len(all))
	for i, o := range all {
		chunks[i] = o.chunk
	}
	if err := corpus.Validate(chunks); err != nil {
		return nil, fmt.Errorf("%s: %w", s.location, err)
	}
	return chunks, nil
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func toPoint(order int, c domain.EmbeddingChunk) *qdrant.PointStruct {
	vec := make([]float32, len(c.Embedding))
	for i, v := range c.Embedding {
		vec[i] = float32(v)
	}
	payload := map[string]*qdrant.Value{
		"slug":    stringValue(c.Slug),
		"title":   stringValue(c.Title),
		"content": stringValue(c.Content),
		"order":   {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(order)}},
	}
	if m := c.Metadata; m != nil {
		if m.ContentType != "" {
			payload["contentType"] = stringValue(string(m.ContentType))
		}
		if len(m.Enrichment) > 0 {
			values := make([]*qdrant.Value, len(m.Enrichment))
			for i, e := range m.Enrichment {
				values[i] = stringValue(e)
			}
			payload["enrichment"] = &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}
		}
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(PointID(c.Slug)),
		Vectors: qdrant.NewVectors(vec...),
		Payload: payload,
	}
}

func fromPoint(p *qdrant.RetrievedPoint) (int64, domain.EmbeddingChunk) {
	payload := p.GetPayload()
	c := domain.EmbeddingChunk{
		ContentChunk: domain.ContentChunk{
			Slug:    payload["slug"].GetStringValue(),
			Title:   payload["title"].GetStringValue(),
			Content: payload["content"].GetStringValue(),
		},
	}
	ct := payload["contentType"].GetStringValue()
	list := payload["enrichment"].GetListValue().GetValues()
	if ct != "" || len(list) > 0 {
		m := &domain.Metadata{ContentType: domain.ContentType(ct)}
		for _, v := range list {
			m.Enrichment = append(m.Enrichment, v.GetStringValue())
		}
		c.Metadata = m
	}
	if data := denseData(p.GetVectors().GetVector()); len(data) > 0 {
		c.Embedding = make([]float64, len(data))
		for i, v := range data {
			c.Embedding[i] = float64(v)
		}
	}
	return payload["order"].GetIntegerValue(), c
}

// denseData reads the dense vector form, falling back to the deprecated
// flat data field older servers fill.
func denseData(v *qdrant.VectorOutput) []float32 {
	if dense := v.GetDense(); dense != nil {
		return dense.GetData()
	}
	return v.GetData()
}
