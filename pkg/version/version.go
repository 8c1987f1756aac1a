// Package version provides build version information for deckforge.
package version

// Version is the current deckforge version.
// Overridden at build time via -ldflags "-X github.com/deckforge/deckforge/pkg/version.Version=...".
var Version = "0.3.0"

// Commit is the git commit hash, set at build time.
var Commit = "unknown"
