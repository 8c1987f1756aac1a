// Package config loads and validates deckforge configuration.
//
// Configuration is resolved in three layers, later layers winning:
//  1. Built-in defaults
//  2. YAML config file (deckforge.yaml)
//  3. Environment variables (DECKFORGE_*, plus provider credentials)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// Config is the complete deckforge configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Paths     PathsConfig     `yaml:"paths"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	LLM       LLMConfig       `yaml:"llm"`
	Market    MarketConfig    `yaml:"market"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PathsConfig configures on-disk locations.
type PathsConfig struct {
	// StoreRoot is where vector collections and the result cache live.
	StoreRoot string `yaml:"store_root"`
	// OutputDir is where rendered decks and scripts are written.
	OutputDir string `yaml:"output_dir"`
}

// FetchConfig bounds repository fetching.
type FetchConfig struct {
	MaxCommits   int    `yaml:"max_commits"`    // commits pulled from history
	MaxDiffChars int    `yaml:"max_diff_chars"` // per-commit diff cap
	MaxDocs      int    `yaml:"max_docs"`       // documentation files pulled
	MaxDocBytes  int    `yaml:"max_doc_bytes"`  // per-doc size cap
	GitHubToken  string `yaml:"-"`              // from GITHUB_TOKEN only, never persisted
}

// ChunkingConfig configures the chunker.
type ChunkingConfig struct {
	ChunkSize         int `yaml:"chunk_size"`
	ChunkOverlap      int `yaml:"chunk_overlap"`
	MaxChunksPerDoc   int `yaml:"max_chunks_per_doc"`
	MaxFilesPerCommit int `yaml:"max_files_per_commit"`
	MaxDiffChars      int `yaml:"max_diff_chars"` // per-chunk diff window
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "static" (deterministic, offline).
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	BatchSize  int           `yaml:"batch_size"`
	OllamaHost string        `yaml:"ollama_host"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"` // LRU entries for query embeddings
}

// RetrievalConfig configures context assembly.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// CacheConfig configures the market-analysis result cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LLMConfig configures the inference provider (OpenAI-compatible API).
type LLMConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"-"` // from DECKFORGE_LLM_API_KEY only
	Timeout time.Duration `yaml:"timeout"`
}

// MarketConfig configures market research.
type MarketConfig struct {
	GoogleAPIKey     string        `yaml:"-"` // from GOOGLE_API_KEY only
	SearchEngineID   string        `yaml:"-"` // from GOOGLE_SEARCH_ENGINE_ID only
	FetchConcurrency int           `yaml:"fetch_concurrency"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	ResultCount      int           `yaml:"result_count"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	root := filepath.Join(home, ".deckforge")

	return &Config{
		Version: 1,
		Paths: PathsConfig{
			StoreRoot: filepath.Join(root, "store"),
			OutputDir: filepath.Join(root, "decks"),
		},
		Fetch: FetchConfig{
			MaxCommits:   5,
			MaxDiffChars: 80_000,
			MaxDocs:      20,
			MaxDocBytes:  120_000,
		},
		Chunking: ChunkingConfig{
			ChunkSize:         1500,
			ChunkOverlap:      200,
			MaxChunksPerDoc:   5,
			MaxFilesPerCommit: 5,
			MaxDiffChars:      1000,
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			BatchSize:  32,
			OllamaHost: "http://localhost:11434",
			Timeout:    60 * time.Second,
			CacheSize:  1000,
		},
		Retrieval: RetrievalConfig{
			TopK:            30,
			MaxContextChars: 20_000,
		},
		Cache: CacheConfig{
			TTL: 7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 120 * time.Second,
		},
		Market: MarketConfig{
			FetchConcurrency: 3,
			FetchTimeout:     5 * time.Second,
			ResultCount:      5,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file, applies the
// environment overlay, and validates the result.
// An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, deckerrors.New(deckerrors.ErrCodeConfigNotFound,
					fmt.Sprintf("config file not found: %s", path), err)
			}
			return nil, deckerrors.ConfigError("read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, deckerrors.ConfigError("parse config file", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("DECKFORGE_STORE_ROOT"); v != "" {
		c.Paths.StoreRoot = v
	}
	if v := os.Getenv("DECKFORGE_OUTPUT_DIR"); v != "" {
		c.Paths.OutputDir = v
	}
	if v := os.Getenv("DECKFORGE_EMBED_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("DECKFORGE_OLLAMA_HOST"); v != "" {
		c.Embedding.OllamaHost = v
	}
	if v := os.Getenv("DECKFORGE_LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("DECKFORGE_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("DECKFORGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DECKFORGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	// Credentials come exclusively from the environment.
	c.Fetch.GitHubToken = os.Getenv("GITHUB_TOKEN")
	c.LLM.APIKey = os.Getenv("DECKFORGE_LLM_API_KEY")
	c.Market.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	c.Market.SearchEngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return deckerrors.ConfigError("chunk_size must be positive", nil)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return deckerrors.ConfigError("chunk_overlap must not be negative", nil)
	}
	// An overlap >= chunk size would make the chunking loop never advance.
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return deckerrors.ConfigError(
			fmt.Sprintf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
				c.Chunking.ChunkOverlap, c.Chunking.ChunkSize), nil)
	}
	if c.Retrieval.TopK <= 0 {
		return deckerrors.ConfigError("top_k must be positive", nil)
	}
	if c.Retrieval.MaxContextChars <= 0 {
		return deckerrors.ConfigError("max_context_chars must be positive", nil)
	}
	if c.Cache.TTL <= 0 {
		return deckerrors.ConfigError("cache ttl must be positive", nil)
	}
	if c.Market.FetchConcurrency <= 0 {
		c.Market.FetchConcurrency = 3
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return deckerrors.ConfigError(fmt.Sprintf("invalid server port %d", c.Server.Port), nil)
	}
	return nil
}

// Save writes the configuration to a YAML file. Credentials are never
// written (yaml:"-" fields).
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return deckerrors.ConfigError("marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return deckerrors.ConfigError("create config directory", err)
	}
	return os.WriteFile(path, data, 0o644)
}
