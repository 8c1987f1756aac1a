// Package repo defines the repository snapshot types shared between the
// fetcher, the chunker, and the indexer.
package repo

import (
	"crypto/sha256"
	"encoding/hex"
)

// Commit is one commit pulled from a repository's history.
type Commit struct {
	SHA     string   `json:"hash"`
	Author  string   `json:"author"`
	Email   string   `json:"email,omitempty"`
	Date    string   `json:"date"` // RFC 3339
	Message string   `json:"message"`
	Diff    string   `json:"diff"`
	Files   []string `json:"files"`
}

// Document is one documentation file (README, docs/, etc.).
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Snapshot is everything fetched from a repository for indexing.
type Snapshot struct {
	URL           string     `json:"url"`
	Commits       []Commit   `json:"commits"`
	Documentation []Document `json:"documentation"`
}

// Hash returns the stable collection hash for a repository URL: the
// first 16 hex characters of its SHA-256. Callers must pass the URL in
// a consistent form (no trailing-slash or case normalization happens
// here).
func Hash(repoURL string) string {
	sum := sha256.Sum256([]byte(repoURL))
	return hex.EncodeToString(sum[:])[:16]
}

// CollectionID returns the vector-store collection name for a repo URL.
func CollectionID(repoURL string) string {
	return "repo_" + Hash(repoURL)
}
