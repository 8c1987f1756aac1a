// Package pipeline orchestrates the full repository-to-pitch-deck run:
// fetch, index, retrieve, sector classification, market analysis, deck
// drafting, and rendering.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/deckforge/deckforge/internal/cache"
	"github.com/deckforge/deckforge/internal/chunk"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/deck"
	"github.com/deckforge/deckforge/internal/embed"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/gitfetch"
	"github.com/deckforge/deckforge/internal/index"
	"github.com/deckforge/deckforge/internal/llm"
	"github.com/deckforge/deckforge/internal/market"
	"github.com/deckforge/deckforge/internal/repo"
	"github.com/deckforge/deckforge/internal/retrieve"
	"github.com/deckforge/deckforge/internal/sector"
	"github.com/deckforge/deckforge/internal/store"
)

// retrievalQuery is the question the retriever answers when assembling
// deck context for a repository.
const retrievalQuery = "Analyze this repository: %s. Focus on: dependencies, tech stack, architecture, features, and implementation details."

// Fetcher pulls repository snapshots.
type Fetcher interface {
	Fetch(ctx context.Context, repoURL string) (repo.Snapshot, error)
}

// Indexer chunks, embeds, and stores a snapshot.
type Indexer interface {
	Index(ctx context.Context, snapshot repo.Snapshot) (index.Stats, error)
}

// Retriever assembles bounded context from an indexed collection.
type Retriever interface {
	RetrieveContext(ctx context.Context, query, collectionID string, k, maxContextChars int) (string, error)
	Search(ctx context.Context, query, collectionID string, k int) ([]store.Result, error)
}

// SectorAnalyzer classifies the repository's market sector.
type SectorAnalyzer interface {
	Analyze(ctx context.Context, repoName, repoContext string) sector.Analysis
}

// MarketAnalyzer researches market size and competition.
type MarketAnalyzer interface {
	Generate(ctx context.Context, req market.Request) market.Analysis
}

// DeckGenerator drafts the deck from context and market data.
type DeckGenerator interface {
	Generate(ctx context.Context, repoContext, audienceKey, repoURL string, analysis market.Analysis) (deck.Deck, error)
}

// Deps holds the pipeline's collaborators.
type Deps struct {
	Fetcher   Fetcher
	Indexer   Indexer
	Retriever Retriever
	Sector    SectorAnalyzer
	Market    MarketAnalyzer
	Deck      DeckGenerator

	Cache *cache.Cache

	OutputDir       string
	TopK            int
	MaxContextChars int
}

// Pipeline runs end-to-end deck generation.
type Pipeline struct {
	deps Deps
}

// New creates a pipeline from explicit collaborators.
func New(deps Deps) *Pipeline {
	if deps.TopK <= 0 {
		deps.TopK = 30
	}
	if deps.MaxContextChars <= 0 {
		deps.MaxContextChars = 20_000
	}
	return &Pipeline{deps: deps}
}

// FromConfig wires the production pipeline. The returned closer shuts
// down the store, cache, and HTTP clients.
func FromConfig(ctx context.Context, cfg *config.Config) (*Pipeline, func() error, error) {
	manager, err := store.NewManager(cfg.Paths.StoreRoot)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embed.NewFromConfig(ctx, cfg.Embedding)
	if err != nil {
		_ = manager.Close()
		return nil, nil, err
	}

	resultCache, err := cache.New(filepath.Join(cfg.Paths.StoreRoot, "cache.db"), cfg.Cache.TTL)
	if err != nil {
		_ = manager.Close()
		return nil, nil, err
	}

	client := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
	})

	searcher := market.NewSearcher(market.SearchConfig{
		APIKey:           cfg.Market.GoogleAPIKey,
		SearchEngineID:   cfg.Market.SearchEngineID,
		FetchConcurrency: cfg.Market.FetchConcurrency,
		FetchTimeout:     cfg.Market.FetchTimeout,
		ResultCount:      cfg.Market.ResultCount,
	})

	opts := chunk.Options{
		ChunkSize:         cfg.Chunking.ChunkSize,
		ChunkOverlap:      cfg.Chunking.ChunkOverlap,
		MaxChunksPerDoc:   cfg.Chunking.MaxChunksPerDoc,
		MaxFilesPerCommit: cfg.Chunking.MaxFilesPerCommit,
		MaxDiffChars:      cfg.Chunking.MaxDiffChars,
	}

	p := New(Deps{
		Fetcher: gitfetch.NewFetcher(gitfetch.Config{
			Token:      cfg.Fetch.GitHubToken,
			MaxCommits: cfg.Fetch.MaxCommits,
			MaxDocs:    cfg.Fetch.MaxDocs,
		}),
		Indexer:         index.New(manager, embedder, opts),
		Retriever:       retrieve.New(manager, embedder),
		Sector:          sector.New(client),
		Market:          market.NewAnalyzer(searcher, client, resultCache),
		Deck:            deck.NewGenerator(client),
		Cache:           resultCache,
		OutputDir:       cfg.Paths.OutputDir,
		TopK:            cfg.Retrieval.TopK,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
	})

	closer := func() error {
		cerr := resultCache.Close()
		if err := client.Close(); err != nil && cerr == nil {
			cerr = err
		}
		if err := manager.Close(); err != nil && cerr == nil {
			cerr = err
		}
		return cerr
	}
	return p, closer, nil
}

// Result is everything one generation run produced.
type Result struct {
	RepoURL      string          `json:"repo_url"`
	RepoHash     string          `json:"repo_hash"`
	CollectionID string          `json:"collection_id"`
	Audience     deck.Audience   `json:"audience"`
	IndexStats   index.Stats     `json:"index_stats"`
	Sector       sector.Analysis `json:"sector"`
	Market       market.Analysis `json:"market"`
	Deck         deck.Deck       `json:"deck"`
	Artifacts    deck.Artifacts  `json:"artifacts"`
	Duration     time.Duration   `json:"-"`
}

// GeneratePitchDeck runs the full pipeline for one repository and
// audience. Only an unreachable repository, an empty snapshot, or a
// failed deck draft abort the run; everything else degrades locally.
func (p *Pipeline) GeneratePitchDeck(ctx context.Context, repoURL, audienceKey string) (Result, error) {
	if audienceKey == "" {
		audienceKey = deck.DefaultAudienceKey
	}
	if !deck.KnownAudience(audienceKey) {
		return Result{}, deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown audience %q", audienceKey), nil)
	}

	start := time.Now()
	audience := deck.AudienceConfig(audienceKey)
	collectionID := repo.CollectionID(repoURL)

	snapshot, err := p.deps.Fetcher.Fetch(ctx, repoURL)
	if err != nil {
		return Result{}, err
	}

	stats, err := p.deps.Indexer.Index(ctx, snapshot)
	if err != nil {
		return Result{}, err
	}

	repoContext := p.retrieveContext(ctx, repoURL, collectionID)

	sectorAnalysis := p.deps.Sector.Analyze(ctx, sector.RepoDisplayName(repoURL), repoContext)
	slog.Info("sector_classified",
		"sector", sectorAnalysis.PrimarySector,
		"fallback", sectorAnalysis.FromFallback)

	marketAnalysis := p.deps.Market.Generate(ctx, market.Request{
		ProjectDescription: sectorAnalysis.PrimarySector,
		TechStack:          techStackLabel(sectorAnalysis.SecondaryTech),
		TargetAudience:     audience.Label,
		MarketFocus:        audience.MarketFocus,
		CompetitorAngle:    audience.CompetitorAngle,
	})

	drafted, err := p.deps.Deck.Generate(ctx, repoContext, audienceKey, repoURL, marketAnalysis)
	if err != nil {
		return Result{}, err
	}

	artifacts, err := deck.WriteFiles(drafted, p.deps.OutputDir, repo.Hash(repoURL), audienceKey)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RepoURL:      repoURL,
		RepoHash:     repo.Hash(repoURL),
		CollectionID: collectionID,
		Audience:     audience,
		IndexStats:   stats,
		Sector:       sectorAnalysis,
		Market:       marketAnalysis,
		Deck:         drafted,
		Artifacts:    artifacts,
		Duration:     time.Since(start),
	}
	slog.Info("pitch_deck_generated",
		"repo", repoURL,
		"audience", audienceKey,
		"slides", len(drafted.Slides),
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// ResultCache exposes the market-analysis cache for the API surface.
func (p *Pipeline) ResultCache() *cache.Cache {
	return p.deps.Cache
}

// IndexRepository fetches and indexes a repository without generating
// a deck.
func (p *Pipeline) IndexRepository(ctx context.Context, repoURL string) (index.Stats, error) {
	snapshot, err := p.deps.Fetcher.Fetch(ctx, repoURL)
	if err != nil {
		return index.Stats{}, err
	}
	return p.deps.Indexer.Index(ctx, snapshot)
}

// Search queries an indexed repository directly.
func (p *Pipeline) Search(ctx context.Context, repoURL, query string, k int) ([]store.Result, error) {
	return p.deps.Retriever.Search(ctx, query, repo.CollectionID(repoURL), k)
}

// retrieveContext assembles deck context, degrading to the no-results
// sentinel if retrieval fails for any reason.
func (p *Pipeline) retrieveContext(ctx context.Context, repoURL, collectionID string) string {
	query := fmt.Sprintf(retrievalQuery, repoURL)
	repoContext, err := p.deps.Retriever.RetrieveContext(ctx, query, collectionID, p.deps.TopK, p.deps.MaxContextChars)
	if err != nil {
		slog.Warn("context_retrieval_failed", "collection", collectionID, "error", err)
		return retrieve.NoResultsSentinel
	}
	return repoContext
}

// techStackLabel joins detected technologies for market queries.
func techStackLabel(tech []string) string {
	if len(tech) == 0 {
		return "Software"
	}
	return strings.Join(tech, ", ")
}
