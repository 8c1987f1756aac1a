// Package index turns a fetched repository snapshot into a searchable
// collection: chunk the documentation and commit history, embed the
// chunks in batches, and upsert everything into the repository's
// collection.
package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/deckforge/deckforge/internal/chunk"
	"github.com/deckforge/deckforge/internal/embed"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/repo"
	"github.com/deckforge/deckforge/internal/store"
)

// Stats reports what one indexing run produced.
type Stats struct {
	CollectionID string        `json:"collection_id"`
	DocChunks    int           `json:"doc_chunks"`
	CommitChunks int           `json:"commit_chunks"`
	Duration     time.Duration `json:"duration"`
}

// Total returns the number of chunks indexed.
func (s Stats) Total() int { return s.DocChunks + s.CommitChunks }

// Indexer embeds and stores repository snapshots.
type Indexer struct {
	manager  *store.Manager
	embedder embed.Embedder
	opts     chunk.Options
}

// New creates an indexer over the given collection manager and
// embedder.
func New(manager *store.Manager, embedder embed.Embedder, opts chunk.Options) *Indexer {
	return &Indexer{manager: manager, embedder: embedder, opts: opts}
}

// Index chunks, embeds, and stores a snapshot. A snapshot with no
// usable content is ErrCodeNothingToIndex; the old collection, if any,
// is left untouched in that case.
func (ix *Indexer) Index(ctx context.Context, snapshot repo.Snapshot) (Stats, error) {
	start := time.Now()
	collectionID := repo.CollectionID(snapshot.URL)

	docChunks, err := chunk.ChunkDocumentation(snapshot.Documentation, ix.opts)
	if err != nil {
		return Stats{}, deckerrors.Wrap(deckerrors.ErrCodeChunkingFailed, err)
	}
	commitChunks := chunk.ChunkCommits(snapshot.Commits, ix.opts)

	chunks := make([]chunk.Chunk, 0, len(docChunks)+len(commitChunks))
	chunks = append(chunks, docChunks...)
	chunks = append(chunks, commitChunks...)
	if len(chunks) == 0 {
		return Stats{}, deckerrors.New(deckerrors.ErrCodeNothingToIndex,
			"repository has no documentation or commit history to index", nil).
			WithDetail("url", snapshot.URL)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Stats{}, err
	}

	collection, err := ix.manager.OpenOrCreate(collectionID, ix.embedder.Dimensions())
	if err != nil {
		return Stats{}, err
	}
	if err := collection.Upsert(ctx, chunks, vectors); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		CollectionID: collectionID,
		DocChunks:    len(docChunks),
		CommitChunks: len(commitChunks),
		Duration:     time.Since(start),
	}
	slog.Info("repository_indexed",
		slog.String("collection", collectionID),
		slog.Int("doc_chunks", stats.DocChunks),
		slog.Int("commit_chunks", stats.CommitChunks),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}
