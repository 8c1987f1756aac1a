package chunk

import (
	"fmt"
	"strings"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/repo"
)

// ChunkText splits text into overlapping chunks of roughly chunkSize
// characters. Cuts prefer a newline, then a space, searched backward
// from the window end; a boundary is only taken if it falls past the
// window midpoint, otherwise the cut is hard. Adjacent chunks overlap
// by overlap characters. Whitespace-only chunks are dropped.
//
// overlap >= chunkSize can never make progress and is rejected as a
// configuration error.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, deckerrors.ConfigError(fmt.Sprintf("chunk size must be positive, got %d", chunkSize), nil)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, deckerrors.ConfigError(
			fmt.Sprintf("chunk overlap %d must be in [0, %d)", overlap, chunkSize), nil)
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, nil
		}
		return []string{text}, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end < len(runes) {
			// Prefer breaking at a newline, then a space, to avoid
			// splitting mid-line or mid-word.
			if nl := lastIndexBetween(runes, '\n', start, end); nl > start+chunkSize/2 {
				end = nl + 1
			} else if sp := lastIndexBetween(runes, ' ', start, end); sp > start+chunkSize/2 {
				end = sp + 1
			}
		} else {
			end = len(runes)
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}

		if end >= len(runes) {
			break
		}
		// Overlap the windows; the guard keeps every iteration advancing
		// even when a boundary cut shortens the window.
		if next := end - overlap; next > start {
			start = next
		} else {
			start = end
		}
	}

	return chunks, nil
}

// lastIndexBetween returns the highest index i in [start, end) with
// runes[i] == r, or -1.
func lastIndexBetween(runes []rune, r rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

// ChunkDocumentation chunks documentation files. Documents with blank
// content are skipped. At most opts.MaxChunksPerDoc chunks are produced
// per document; TotalChunks reflects the capped count.
func ChunkDocumentation(docs []repo.Document, opts Options) ([]Chunk, error) {
	var all []Chunk

	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}

		pieces, err := ChunkText(doc.Content, opts.ChunkSize, opts.ChunkOverlap)
		if err != nil {
			return nil, err
		}

		total := len(pieces)
		if total > opts.MaxChunksPerDoc {
			total = opts.MaxChunksPerDoc
		}

		for idx, piece := range pieces[:total] {
			all = append(all, Chunk{
				ID:   fmt.Sprintf("doc:%s:%d", doc.Path, idx),
				Text: piece,
				Meta: Metadata{
					Type:        TypeDoc,
					Path:        doc.Path,
					ChunkIdx:    idx,
					TotalChunks: total,
				},
			})
		}
	}

	return all, nil
}

// ChunkCommits chunks commit history. A commit with no file list but a
// non-empty diff yields one combined chunk; otherwise up to
// opts.MaxFilesPerCommit per-file chunks are produced.
//
// Per-file diff association is a documented heuristic: the first
// occurrence of the file path inside the full diff text anchors a
// MaxDiffChars window. When the path is not found the window falls back
// to the head of the diff. Hunk-accurate splitting is deliberately not
// attempted.
func ChunkCommits(commits []repo.Commit, opts Options) []Chunk {
	var all []Chunk

	for _, c := range commits {
		author := c.Author
		if author == "" {
			author = "Unknown"
		}

		if len(c.Files) == 0 {
			if c.Diff == "" {
				continue
			}
			text := fmt.Sprintf("Commit: %s\nAuthor: %s\nDate: %s\n\nDiff:\n%s",
				c.Message, author, c.Date, truncate(c.Diff, opts.MaxDiffChars))
			all = append(all, Chunk{
				ID:   fmt.Sprintf("commit:%s:0", c.SHA),
				Text: text,
				Meta: Metadata{
					Type:    TypeCommit,
					SHA:     c.SHA,
					Message: c.Message,
					Author:  author,
					Date:    c.Date,
				},
			})
			continue
		}

		files := c.Files
		if len(files) > opts.MaxFilesPerCommit {
			files = files[:opts.MaxFilesPerCommit]
		}

		for idx, file := range files {
			snippet := diffWindow(c.Diff, file, opts.MaxDiffChars)
			text := fmt.Sprintf("Commit: %s\nFile: %s\nAuthor: %s\nDate: %s\n\nDiff:\n%s",
				c.Message, file, author, c.Date, snippet)
			all = append(all, Chunk{
				ID:   fmt.Sprintf("commit:%s:%d", c.SHA, idx),
				Text: text,
				Meta: Metadata{
					Type:    TypeCommit,
					SHA:     c.SHA,
					Message: c.Message,
					Author:  author,
					Date:    c.Date,
					File:    file,
				},
			})
		}
	}

	return all
}

// diffWindow extracts the best-effort diff region for a file.
func diffWindow(diff, file string, maxChars int) string {
	if diff == "" {
		return ""
	}
	if pos := strings.Index(diff, file); pos >= 0 {
		return truncate(diff[pos:], maxChars)
	}
	return truncate(diff, maxChars)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
