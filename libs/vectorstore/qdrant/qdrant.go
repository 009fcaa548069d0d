package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/jacky-htg/ai-tutor/libs/interfaces"
	"github.com/jacky-htg/ai-tutor/libs/vectorstore"
)

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant server address (e.g., "https://example.qdrant.io:6334").
	URL string

	// CollectionName is the collection holding the tutor documents.
	CollectionName string

	// APIKey is an optional API key for authentication.
	APIKey string
}

// Client implements vectorstore.Store for Qdrant and additionally supports
// the upsert side used by ingestion.
type Client struct {
	client         *qdrant.Client
	collectionName string
}

var _ vectorstore.Store = (*Client)(nil)

// New creates a Qdrant client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("qdrant collection name is required")
	}

	parsed := cfg.URL
	if !strings.HasPrefix(parsed, "http://") && !strings.HasPrefix(parsed, "https://") {
		parsed = "https://" + parsed
	}
	u, err := url.Parse(parsed)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	qc, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Client{client: qc, collectionName: cfg.CollectionName}, nil
}

// Search implements vectorstore.Store.
func (c *Client) Search(ctx context.Context, vector []float32, limit int) ([]interfaces.Passage, error) {
	limitU := uint64(limit)
	points, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitU,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	passages := make([]interfaces.Passage, 0, len(points))
	for _, point := range points {
		p := interfaces.Passage{Score: point.Score}
		for k, v := range point.Payload {
			switch k {
			case "content":
				p.Content = v.GetStringValue()
			case "source":
				p.Source = v.GetStringValue()
			}
		}
		if p.Content == "" {
			continue
		}
		passages = append(passages, p)
	}
	return passages, nil
}

// Point is one document chunk with its embedding, ready to upsert.
type Point struct {
	ID      string
	Vector  []float32
	Content string
	Source  string
}

// EnsureCollection creates the collection with the given vector size if it
// does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context, dim int) error {
	exists, err := c.client.CollectionExists(ctx, c.collectionName)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}
	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Upsert writes points into the collection.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content": p.Content,
				"source":  p.Source,
			}),
		})
	}
	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collectionName,
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Close implements vectorstore.Store.
func (c *Client) Close() error {
	return c.client.Close()
}
