// Package store persists indexed repository content. Each repository
// gets a collection: an HNSW vector index for similarity search plus a
// SQLite table holding the chunk text and metadata the vectors point
// at. Collections live side by side under a single store root.
package store

import (
	"math"

	"github.com/deckforge/deckforge/internal/chunk"
)

// IndexConfig configures a vector index.
type IndexConfig struct {
	Dimensions int
	Metric     string // "cos" or "l2", default "cos"
	M          int    // HNSW connectivity, default 16
	EfSearch   int    // search expansion factor, default 20
}

// Hit is one vector-index match. Lower distance means more similar.
type Hit struct {
	ID       string
	Distance float32
	Score    float32
}

// Result is one retrieval hit after joining the vector match with the
// stored chunk.
type Result struct {
	Chunk    chunk.Chunk
	Distance float32
	Score    float32
}

// normalizeInPlace scales a vector to unit length. Zero vectors are
// left untouched.
func normalizeInPlace(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// distanceToScore converts a metric distance to a similarity score in
// a roughly [0,1] range, higher is better.
func distanceToScore(distance float32, metric string) float32 {
	switch metric {
	case "l2":
		return 1.0 / (1.0 + distance)
	default: // cosine distance is 1 - cosine similarity
		return 1.0 - distance
	}
}
