package gitfetch

import (
	"path"
	"strings"
)

const (
	// maxFileBytes drops oversized blobs from commit file lists and docs.
	maxFileBytes = 200_000

	// maxDocBytes drops oversized documentation files.
	maxDocBytes = 120_000

	// maxDiffChars caps the assembled diff text per commit.
	maxDiffChars = 80_000

	diffTruncationMark = "\n...\n[diff truncated]\n"
)

// excludeDirs are path segments that mark generated, vendored, or test
// trees. Files under any of them are skipped entirely.
var excludeDirs = map[string]struct{}{
	"node_modules": {}, "dist": {}, "build": {}, ".next": {}, "out": {},
	"coverage": {}, "test": {}, "tests": {}, "__tests__": {},
	"__snapshots__": {}, "examples": {}, "example": {}, "demo": {},
	"demos": {}, ".git": {},
}

var lockfiles = map[string]struct{}{
	"package-lock.json": {}, "yarn.lock": {}, "pnpm-lock.yaml": {},
	"bun.lockb": {}, "Cargo.lock": {}, "Pipfile.lock": {}, "poetry.lock": {},
}

// sourceExtensions is the allowlist for commit diffs. Docs and assets
// are chunked separately; diffs stay focused on code and config.
var sourceExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {}, ".mjs": {},
	".cjs": {}, ".go": {}, ".rs": {}, ".java": {}, ".kt": {}, ".c": {},
	".h": {}, ".cpp": {}, ".hpp": {}, ".cs": {}, ".rb": {}, ".php": {},
	".swift": {}, ".scala": {}, ".m": {}, ".mm": {}, ".sh": {},
	".bash": {}, ".zsh": {}, ".ps1": {}, ".yml": {}, ".yaml": {},
	".toml": {}, ".ini": {}, ".conf": {}, ".properties": {}, ".json": {},
	".env": {}, ".dockerfile": {}, ".gradle": {}, ".cfg": {},
}

var docExtensions = map[string]struct{}{
	".md": {}, ".rst": {}, ".adoc": {},
}

var docBasePrefixes = []string{"README", "CONTRIBUTING", "LICENSE"}

// isExcludedPath reports whether a repository-relative path sits in an
// excluded tree, names a lockfile, or looks like a test file.
func isExcludedPath(rel string) bool {
	segments := strings.Split(rel, "/")
	for _, seg := range segments[:len(segments)-1] {
		if _, ok := excludeDirs[seg]; ok {
			return true
		}
		if strings.Contains(seg, "test") || strings.Contains(seg, "__tests__") {
			return true
		}
	}
	base := segments[len(segments)-1]
	if _, ok := excludeDirs[base]; ok {
		return true
	}
	if _, ok := lockfiles[base]; ok {
		return true
	}
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	return false
}

// isSourceFile reports whether a path carries a diff-worthy extension.
func isSourceFile(rel string) bool {
	_, ok := sourceExtensions[strings.ToLower(path.Ext(rel))]
	return ok
}

// isDocPath reports whether a path counts as documentation: markdown,
// reStructuredText, or AsciiDoc anywhere, anything under docs/, and
// README/CONTRIBUTING/LICENSE files at the repository root.
func isDocPath(rel string) bool {
	if _, ok := docExtensions[strings.ToLower(path.Ext(rel))]; ok {
		return true
	}
	if strings.HasPrefix(rel, "docs/") {
		return true
	}
	if !strings.Contains(rel, "/") {
		upper := strings.ToUpper(rel)
		for _, prefix := range docBasePrefixes {
			if strings.HasPrefix(upper, prefix) {
				return true
			}
		}
	}
	return false
}

// truncateDiff caps a commit diff at maxDiffChars.
func truncateDiff(diff string) string {
	if len(diff) <= maxDiffChars {
		return diff
	}
	return diff[:maxDiffChars] + diffTruncationMark
}
