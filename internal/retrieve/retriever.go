// Package retrieve assembles bounded context strings from a
// repository's indexed chunks. Results are ranked by vector distance
// and greedily packed under a caller-supplied character budget, each
// block carrying a provenance header naming the doc or commit it came
// from.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deckforge/deckforge/internal/chunk"
	"github.com/deckforge/deckforge/internal/embed"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/store"
)

// Sentinels returned instead of context. Callers distinguish "nothing
// indexed or matched" from "matches existed but none fit the budget".
const (
	NoResultsSentinel      = "No relevant context found in the repository."
	BudgetExcludedSentinel = "No relevant context found within size limits."
)

// blockDelimiter separates context blocks.
const blockDelimiter = "\n---\n\n"

// Defaults for retrieval parameters.
const (
	DefaultTopK            = 15
	DefaultMaxContextChars = 12000
)

// Retriever queries collections and assembles context.
type Retriever struct {
	manager  *store.Manager
	embedder embed.Embedder
}

// New creates a retriever over the given collection manager and
// embedder. The embedder must match the one used at index time.
func New(manager *store.Manager, embedder embed.Embedder) *Retriever {
	return &Retriever{manager: manager, embedder: embedder}
}

// RetrieveContext returns the assembled context string for a query
// against a collection. An unindexed collection is not an error; it
// yields the no-results sentinel so generation can proceed without
// repository context.
func (r *Retriever) RetrieveContext(ctx context.Context, query, collectionID string, k, maxContextChars int) (string, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}

	results, err := r.Search(ctx, query, collectionID, k)
	if err != nil {
		if deckerrors.HasCode(err, deckerrors.ErrCodeNotIndexed) {
			slog.Warn("retrieval_on_unindexed_collection", slog.String("collection", collectionID))
			return NoResultsSentinel, nil
		}
		return "", err
	}
	if len(results) == 0 {
		return NoResultsSentinel, nil
	}

	return assembleContext(results, maxContextChars), nil
}

// Search returns the raw ranked results for a query, nearest first.
func (r *Retriever) Search(ctx context.Context, query, collectionID string, k int) ([]store.Result, error) {
	collection, err := r.manager.Open(collectionID)
	if err != nil {
		return nil, err
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return collection.Query(ctx, vector, k)
}

// assembleContext greedily packs ranked results under the character
// budget. Packing stops at the first chunk that would not fit; a large
// early chunk can starve smaller later ones, which keeps the output
// deterministic.
func assembleContext(results []store.Result, maxContextChars int) string {
	var (
		blocks     []string
		totalChars int
	)
	for _, res := range results {
		if totalChars+len(res.Chunk.Text) > maxContextChars {
			break
		}
		header := provenanceHeader(res.Chunk.Meta)
		blocks = append(blocks, header+"\n"+res.Chunk.Text+"\n")
		totalChars += len(res.Chunk.Text) + len(header) + 2
	}

	if len(blocks) == 0 {
		return BudgetExcludedSentinel
	}
	return strings.Join(blocks, blockDelimiter)
}

// provenanceHeader names where a chunk came from.
func provenanceHeader(meta chunk.Metadata) string {
	switch meta.Type {
	case chunk.TypeDoc:
		path := meta.Path
		if path == "" {
			path = "unknown"
		}
		return fmt.Sprintf("[Documentation: %s]", path)
	case chunk.TypeCommit:
		sha := meta.SHA
		if sha == "" {
			sha = "unknown"
		}
		if len(sha) > 8 {
			sha = sha[:8]
		}
		return fmt.Sprintf("[Commit %s: %s]", sha, meta.Message)
	default:
		return fmt.Sprintf("[%s]", meta.Type)
	}
}
