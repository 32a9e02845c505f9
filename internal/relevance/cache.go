package relevance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Cache persists phrase embeddings in qdrant so facts are embedded once
// across process restarts. Point ids are derived from the phrase text, so
// re-inserting the same phrase is an idempotent upsert.
type Cache struct {
	client     *qdrant.Client
	collection string
	dims       uint64
}

// NewCache connects to qdrant and makes sure the collection exists.
func NewCache(qdrantURL, collection, apiKey string, dims uint64) (*Cache, error) {
	qdrantURL = strings.TrimPrefix(qdrantURL, "http://")
	qdrantURL = strings.TrimPrefix(qdrantURL, "https://")
	host := qdrantURL
	if idx := strings.Index(qdrantURL, ":"); idx != -1 {
		host = qdrantURL[:idx]
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   6334, // gRPC port
		APIKey: apiKey,
		UseTLS: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	c := &Cache{client: client, collection: collection, dims: dims}
	if err := c.ensureCollection(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	return c, nil
}

func (c *Cache) ensureCollection(ctx context.Context) error {
	exists, err := c.client.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     c.dims,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	fieldType := qdrant.FieldType_FieldTypeKeyword
	_, err = c.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: c.collection,
		FieldName:      "text",
		FieldType:      &fieldType,
	})
	if err != nil {
		return fmt.Errorf("create text index: %w", err)
	}
	return nil
}

func pointID(text string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(text)).String()
}

// Get returns the cached embedding for text, reporting a miss as ok=false.
func (c *Cache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	points, err := c.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: c.collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(pointID(text))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("get cached embedding: %w", err)
	}
	if len(points) == 0 {
		return nil, false, nil
	}
	vectors := points[0].GetVectors().GetVector()
	if vectors == nil || len(vectors.Data) == 0 {
		return nil, false, nil
	}
	return vectors.Data, true, nil
}

// Put stores the embedding for text.
func (c *Cache) Put(ctx context.Context, text string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID(text)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: map[string]*qdrant.Value{
			"text": qdrant.NewValueString(text),
		},
	}
	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}
