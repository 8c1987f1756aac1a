package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// Ollama defaults.
const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"

	// OllamaConnectTimeout bounds the initial health check.
	OllamaConnectTimeout = 5 * time.Second
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	Host       string
	Model      string
	Dimensions int // 0 = auto-detect from a probe embedding
	BatchSize  int
	Timeout    time.Duration
	MaxRetries int

	// SkipHealthCheck skips connection probing (tests).
	SkipHealthCheck bool
}

// OllamaEmbedder generates embeddings using Ollama's HTTP API.
type OllamaEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    OllamaConfig
	modelName string
	dims      int

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*OllamaEmbedder)(nil)

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates a new Ollama embedder and, unless skipped,
// probes the server to verify the model and detect dimensions.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > MaxBatchSize {
		cfg.BatchSize = MaxBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     10 * time.Second,
	}

	// No client-level timeout: per-request contexts carry the deadline.
	e := &OllamaEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
		modelName: cfg.Model,
		dims:      cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		dims, err := e.probeDimensions(probeCtx)
		if err != nil {
			transport.CloseIdleConnections()
			return nil, deckerrors.Wrap(deckerrors.ErrCodeNetworkUnavailable, err)
		}
		if e.dims == 0 {
			e.dims = dims
		} else if e.dims != dims {
			transport.CloseIdleConnections()
			return nil, deckerrors.New(deckerrors.ErrCodeDimensionMismatch,
				fmt.Sprintf("configured %d dimensions but model %s returns %d",
					e.dims, e.modelName, dims), nil)
		}
	}

	return e, nil
}

// probeDimensions embeds a probe string to learn the model's dimension.
func (e *OllamaEmbedder) probeDimensions(ctx context.Context) (int, error) {
	vecs, err := e.doEmbed(ctx, []string{"dimension probe"})
	if err != nil {
		return 0, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return 0, fmt.Errorf("empty embedding returned by %s", e.modelName)
	}
	return len(vecs[0]), nil
}

// Embed generates the embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.dims), nil
	}
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting into
// request batches of the configured size. Each request is retried with
// bounded backoff.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var vecs [][]float32
		retryCfg := deckerrors.DefaultRetryConfig()
		retryCfg.MaxRetries = e.config.MaxRetries
		err := deckerrors.Retry(ctx, retryCfg, func() error {
			reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
			defer cancel()

			var embedErr error
			vecs, embedErr = e.doEmbed(reqCtx, batch)
			if embedErr != nil {
				return deckerrors.TransientIO("ollama embed", embedErr)
			}
			return nil
		})
		if err != nil {
			return nil, deckerrors.Wrap(deckerrors.ErrCodeEmbeddingFailed, err)
		}
		if len(vecs) != len(batch) {
			return nil, deckerrors.New(deckerrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(vecs)), nil)
		}
		results = append(results, vecs...)
	}

	return results, nil
}

// doEmbed performs one /api/embed request.
func (e *OllamaEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.modelName, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to Ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result.Embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int { return e.dims }

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string { return e.modelName }

// Available checks whether the Ollama server responds.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, OllamaConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, e.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Close releases HTTP resources.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.transport.CloseIdleConnections()
	return nil
}
