// Package memory provides vector and conversation storage backends.
package memory

import "context"

// VectorStore defines the interface for a vector database.
type VectorStore interface {
	// CreateCollection creates a collection if it doesn't already exist.
	CreateCollection(ctx context.Context, name string, vectorSize uint64) error
	// Upsert adds or updates points in the vector store.
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns the nearest points to the given vector, best first.
	Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float32) ([]SearchResult, error)
	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (uint64, error)
	// DeleteCollection removes the collection and all its points.
	DeleteCollection(ctx context.Context, name string) error
}

// Point represents a data point in the vector store.
type Point struct {
	ID        string         `json:"id"`
	Vector    []float32      `json:"vector"`
	Payload   map[string]any `json:"payload"`
	Timestamp int64          `json:"timestamp"`
}

// SearchResult represents a result from a vector search.
type SearchResult struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
	Point Point   `json:"point"`
}

// Embedder defines the interface for converting text to vectors.
type Embedder interface {
	// Embed converts a text string into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)
}
