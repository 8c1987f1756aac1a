package embed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deckforge/deckforge/internal/config"
)

// NewFromConfig constructs the configured embedding provider wrapped in
// the LRU cache. Unknown providers are a hard error; if Ollama is
// configured but unreachable the static provider is used instead so an
// offline machine can still index and retrieve.
func NewFromConfig(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	var inner Embedder

	switch cfg.Provider {
	case "static":
		inner = NewStaticEmbedder()

	case "ollama", "":
		ollama, err := NewOllamaEmbedder(ctx, OllamaConfig{
			Host:       cfg.OllamaHost,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			slog.Warn("ollama_unavailable_using_static_embedder",
				slog.String("host", cfg.OllamaHost),
				slog.String("error", err.Error()))
			inner = NewStaticEmbedder()
		} else {
			inner = ollama
		}

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
