// Package chunk splits repository material (documentation pages, commit
// diffs) into bounded, overlapping retrievable units with deterministic
// identities.
package chunk

// Content types carried in chunk metadata.
const (
	TypeDoc    = "doc"
	TypeCommit = "commit"
)

// Metadata describes where a chunk came from. It is immutable once the
// chunk is created.
type Metadata struct {
	Type string `json:"type"` // "doc" or "commit"

	// Documentation chunks
	Path        string `json:"path,omitempty"`
	ChunkIdx    int    `json:"chunk_idx,omitempty"`
	TotalChunks int    `json:"total_chunks,omitempty"`

	// Commit chunks
	SHA     string `json:"sha,omitempty"`
	Message string `json:"message,omitempty"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
	File    string `json:"file,omitempty"`
}

// Chunk is the atom of retrieval: a bounded unit of text with a stable
// identity. IDs are deterministic from the source ("doc:<path>:<idx>",
// "commit:<sha>:<idx>") so re-indexing the same snapshot overwrites
// instead of duplicating.
type Chunk struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Meta Metadata `json:"metadata"`
}

// Options bounds chunk production.
type Options struct {
	ChunkSize         int // target characters per chunk
	ChunkOverlap      int // characters shared between adjacent chunks
	MaxChunksPerDoc   int // extra chunks are dropped, not merged
	MaxFilesPerCommit int
	MaxDiffChars      int // diff window per commit chunk
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		ChunkSize:         1500,
		ChunkOverlap:      200,
		MaxChunksPerDoc:   5,
		MaxFilesPerCommit: 5,
		MaxDiffChars:      1000,
	}
}
