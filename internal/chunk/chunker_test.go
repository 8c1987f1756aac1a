package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/repo"
)

func TestChunkText_ShortTextIsSingleChunk(t *testing.T) {
	chunks, err := ChunkText("hello world", 1500, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunkText_BlankTextYieldsNothing(t *testing.T) {
	chunks, err := ChunkText("   \n\t  ", 1500, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkText_RejectsOverlapGTEChunkSize(t *testing.T) {
	// Given: overlap == chunk size, a non-progressing configuration
	_, err := ChunkText(strings.Repeat("a", 500), 100, 100)

	// Then: it is rejected as a configuration error
	require.Error(t, err)
	assert.True(t, deckerrors.HasCode(err, deckerrors.ErrCodeConfigInvalid))
}

func TestChunkText_SizeBound(t *testing.T) {
	// Given: 10000 chars of prose with spaces
	words := strings.Repeat("lorem ipsum dolor sit amet ", 400)
	chunkSize := 500

	chunks, err := ChunkText(words, chunkSize, 50)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		// Every chunk is bounded by the window size; trimming only shrinks.
		assert.LessOrEqual(t, len([]rune(c)), chunkSize, "chunk %d exceeds size", i)
		assert.NotEmpty(t, strings.TrimSpace(c), "chunk %d is blank", i)
	}
}

func TestChunkText_PrefersNewlineBoundary(t *testing.T) {
	// Given: lines of 80 chars, so a newline always exists past the midpoint
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(strings.Repeat("x", 79) + "\n")
	}

	chunks, err := ChunkText(b.String(), 500, 50)
	require.NoError(t, err)

	// Then: chunks end at line boundaries (no split mid-line)
	for _, c := range chunks {
		for _, line := range strings.Split(c, "\n") {
			assert.LessOrEqual(t, len(line), 79)
		}
	}
}

func TestChunkText_OverlapPreserved(t *testing.T) {
	// Given: text with no newlines or spaces, forcing hard cuts
	text := strings.Repeat("abcdefghij", 100) // 1000 chars
	chunkSize, overlap := 300, 60

	chunks, err := ChunkText(text, chunkSize, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Then: the head of chunk i+1 repeats the tail of chunk i
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-overlap:]
		assert.True(t, strings.HasPrefix(chunks[i+1], tail),
			"chunk %d does not start with the %d-char tail of chunk %d", i+1, overlap, i)
	}
}

func TestChunkText_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200)

	a, err := ChunkText(text, 1500, 200)
	require.NoError(t, err)
	b, err := ChunkText(text, 1500, 200)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestChunkDocumentation_SkipsBlankAndCapsPerDoc(t *testing.T) {
	docs := []repo.Document{
		{Path: "EMPTY.md", Content: "   \n  "},
		{Path: "README.md", Content: strings.Repeat("deckforge builds pitch decks from repos. ", 600)},
	}
	opts := DefaultOptions()
	opts.ChunkSize = 500
	opts.ChunkOverlap = 50
	opts.MaxChunksPerDoc = 3

	chunks, err := ChunkDocumentation(docs, opts)
	require.NoError(t, err)

	// Then: the blank doc produced nothing and the cap holds
	require.Len(t, chunks, 3)
	for idx, c := range chunks {
		assert.Equal(t, fmt.Sprintf("doc:README.md:%d", idx), c.ID)
		assert.Equal(t, TypeDoc, c.Meta.Type)
		assert.Equal(t, "README.md", c.Meta.Path)
		assert.Equal(t, idx, c.Meta.ChunkIdx)
		// TotalChunks reflects the capped count, not the raw count.
		assert.Equal(t, 3, c.Meta.TotalChunks)
	}
}

func TestChunkDocumentation_IdempotentIdentity(t *testing.T) {
	docs := []repo.Document{
		{Path: "docs/guide.md", Content: strings.Repeat("alpha beta gamma delta. ", 300)},
	}

	first, err := ChunkDocumentation(docs, DefaultOptions())
	require.NoError(t, err)
	second, err := ChunkDocumentation(docs, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunkCommits_NoFilesWithDiff(t *testing.T) {
	commits := []repo.Commit{{
		SHA:     "deadbeefcafe0123",
		Message: "fix retry backoff",
		Author:  "Sam",
		Date:    "2026-01-02T10:00:00Z",
		Diff:    strings.Repeat("- old\n+ new\n", 200),
	}}
	opts := DefaultOptions()
	opts.MaxDiffChars = 100

	chunks := ChunkCommits(commits, opts)

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "commit:deadbeefcafe0123:0", c.ID)
	assert.Equal(t, TypeCommit, c.Meta.Type)
	assert.Empty(t, c.Meta.File)
	assert.Contains(t, c.Text, "Commit: fix retry backoff")
	assert.Contains(t, c.Text, "Author: Sam")
	// Diff is truncated to MaxDiffChars.
	diffPart := c.Text[strings.Index(c.Text, "Diff:\n")+len("Diff:\n"):]
	assert.LessOrEqual(t, len(diffPart), 100)
}

func TestChunkCommits_PerFileWindowHeuristic(t *testing.T) {
	diff := "diff --git a/main.go b/main.go\n+++ b/main.go\n+func main() {}\n" +
		"diff --git a/util.go b/util.go\n+++ b/util.go\n+func helper() {}\n"
	commits := []repo.Commit{{
		SHA:     "0011223344556677",
		Message: "add helper",
		Author:  "Lee",
		Date:    "2026-01-03T09:00:00Z",
		Diff:    diff,
		Files:   []string{"util.go", "missing.go"},
	}}
	opts := DefaultOptions()
	opts.MaxDiffChars = 80

	chunks := ChunkCommits(commits, opts)
	require.Len(t, chunks, 2)

	// File found in diff: window starts at its first occurrence.
	assert.Equal(t, "commit:0011223344556677:0", chunks[0].ID)
	assert.Contains(t, chunks[0].Text, "File: util.go")
	assert.Contains(t, chunks[0].Text, "Diff:\nutil.go")

	// File missing from diff: window falls back to the diff head.
	assert.Equal(t, "commit:0011223344556677:1", chunks[1].ID)
	assert.Contains(t, chunks[1].Text, "Diff:\ndiff --git a/main.go")
}

func TestChunkCommits_CapsFilesPerCommit(t *testing.T) {
	files := make([]string, 10)
	for i := range files {
		files[i] = fmt.Sprintf("file%d.go", i)
	}
	commits := []repo.Commit{{
		SHA: "aabbccdd", Message: "big change", Diff: "irrelevant", Files: files,
	}}
	opts := DefaultOptions()
	opts.MaxFilesPerCommit = 4

	chunks := ChunkCommits(commits, opts)
	assert.Len(t, chunks, 4)
}

func TestChunkCommits_EmptyCommitYieldsNothing(t *testing.T) {
	chunks := ChunkCommits([]repo.Commit{{SHA: "ff", Message: "empty"}}, DefaultOptions())
	assert.Empty(t, chunks)
}
