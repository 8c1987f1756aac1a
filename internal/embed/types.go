// Package embed provides vector embedding providers.
//
// The pipeline treats embedding as an injectable capability: the Ollama
// provider talks to a local model server over HTTP, and the static
// provider computes deterministic hash-based vectors with no external
// dependency (offline runs and tests). Both are deterministic for
// identical input text and model, which the index and cache rely on.
package embed

import (
	"context"
	"math"
	"time"
)

// Embedding defaults.
const (
	// DefaultBatchSize is the default batch size for embedding requests.
	DefaultBatchSize = 32

	// MaxBatchSize caps batches to prevent memory exhaustion.
	MaxBatchSize = 256

	// DefaultTimeout is the default timeout for embedding requests.
	DefaultTimeout = 60 * time.Second

	// StaticDimensions is the embedding dimension of the static provider.
	StaticDimensions = 256
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
