package gitfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in          string
		owner, name string
	}{
		{"https://github.com/golang/go", "golang", "go"},
		{"https://github.com/golang/go.git", "golang", "go"},
		{"https://github.com/golang/go/", "golang", "go"},
		{"git@github.com:golang/go.git", "golang", "go"},
		{"https://www.github.com/a/b", "a", "b"},
	}
	for _, tt := range tests {
		owner, name, err := ParseRepoURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.owner, owner, tt.in)
		assert.Equal(t, tt.name, name, tt.in)
	}
}

func TestParseRepoURL_Invalid(t *testing.T) {
	for _, in := range []string{
		"https://gitlab.com/a/b",
		"https://github.com/onlyowner",
		"git@github.com:broken",
		"not a url at all",
	} {
		_, _, err := ParseRepoURL(in)
		require.Error(t, err, in)
		assert.True(t, deckerrors.HasCode(err, deckerrors.ErrCodeInvalidInput), in)
	}
}

func TestIsExcludedPath(t *testing.T) {
	excluded := []string{
		"node_modules/react/index.js",
		"dist/bundle.js",
		"src/__tests__/app.test.ts",
		"app.spec.tsx",
		"package-lock.json",
		"internal/testdata/fixture.json",
	}
	for _, p := range excluded {
		assert.True(t, isExcludedPath(p), p)
	}

	included := []string{
		"src/app.ts",
		"cmd/main.go",
		"README.md",
		"internal/store/collection.go",
	}
	for _, p := range included {
		assert.False(t, isExcludedPath(p), p)
	}
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, isSourceFile("src/app.go"))
	assert.True(t, isSourceFile("config.YAML"))
	assert.False(t, isSourceFile("README.md"))
	assert.False(t, isSourceFile("logo.png"))
}

func TestIsDocPath(t *testing.T) {
	docs := []string{
		"README.md",
		"readme.md",
		"LICENSE",
		"CONTRIBUTING.rst",
		"docs/guide.txt",
		"guides/intro.adoc",
	}
	for _, p := range docs {
		assert.True(t, isDocPath(p), p)
	}

	// root-only names do not count deeper in the tree unless the
	// extension qualifies
	assert.False(t, isDocPath("vendor/LICENSE"))
	assert.False(t, isDocPath("src/app.go"))
}

func TestTruncateDiff(t *testing.T) {
	small := "diff --git a/x b/x"
	assert.Equal(t, small, truncateDiff(small))

	big := strings.Repeat("x", maxDiffChars+10)
	got := truncateDiff(big)
	assert.Len(t, got, maxDiffChars+len(diffTruncationMark))
	assert.True(t, strings.HasSuffix(got, "[diff truncated]\n"))
}

// newTestFetcher points the fetcher at a stub GitHub API and disables
// the proactive throttle.
func newTestFetcher(t *testing.T, handler http.Handler) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewFetcher(Config{MaxCommits: 5, MaxDocs: 20})
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	f.gh.BaseURL = base
	f.limiter.bucket = rate.NewLimiter(rate.Inf, 1)
	return f
}

func stubAPI(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widget", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"widget","default_branch":"main"}`)
	})
	mux.HandleFunc("GET /repos/acme/widget/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha":"abc123"}]`)
	})
	mux.HandleFunc("GET /repos/acme/widget/commits/abc123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"sha": "abc123",
			"commit": {
				"author": {"name": "Ada", "email": "ada@example.com", "date": "2024-05-01T10:00:00Z"},
				"message": "add retry logic\n"
			},
			"files": [
				{"filename": "internal/retry.go", "patch": "@@ -0,0 +1 @@\n+package retry"},
				{"filename": "node_modules/dep/index.js", "patch": "@@ ignored @@"},
				{"filename": "README.md", "patch": "@@ docs @@"}
			]
		}`)
	})
	mux.HandleFunc("GET /repos/acme/widget/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha":"t1","tree":[
			{"path": "README.md", "type": "blob", "size": 40},
			{"path": "docs/guide.md", "type": "blob", "size": 40},
			{"path": "node_modules/dep/README.md", "type": "blob", "size": 40},
			{"path": "src", "type": "tree"}
		]}`)
	})
	contents := func(text string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"type":"file","encoding":"","content":%q}`, text)
		}
	}
	mux.HandleFunc("GET /repos/acme/widget/contents/README.md", contents("# Widget"))
	mux.HandleFunc("GET /repos/acme/widget/contents/docs/guide.md", contents("Guide body"))
	return mux
}

func TestFetch_BuildsSnapshot(t *testing.T) {
	f := newTestFetcher(t, stubAPI(t))

	snap, err := f.Fetch(context.Background(), "https://github.com/acme/widget")

	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/widget", snap.URL)

	require.Len(t, snap.Commits, 1)
	c := snap.Commits[0]
	assert.Equal(t, "abc123", c.SHA)
	assert.Equal(t, "Ada", c.Author)
	assert.Equal(t, "add retry logic", c.Message)
	assert.Equal(t, "2024-05-01T10:00:00Z", c.Date)
	// excluded dirs and non-source files stay out of the diff
	assert.Equal(t, []string{"internal/retry.go"}, c.Files)
	assert.Contains(t, c.Diff, "diff --git a/internal/retry.go")
	assert.NotContains(t, c.Diff, "node_modules")

	require.Len(t, snap.Documentation, 2)
	assert.Equal(t, "README.md", snap.Documentation[0].Path)
	assert.Equal(t, "# Widget", snap.Documentation[0].Content)
	assert.Equal(t, "docs/guide.md", snap.Documentation[1].Path)
}

func TestFetch_UnreachableRepoIsFatal(t *testing.T) {
	f := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))

	_, err := f.Fetch(context.Background(), "https://github.com/acme/widget")

	require.Error(t, err)
	assert.True(t, deckerrors.HasCode(err, deckerrors.ErrCodeRepoUnreachable))
	assert.True(t, deckerrors.IsFatal(err))
}

func TestFetch_DocFailureDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widget", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"widget","default_branch":"main"}`)
	})
	mux.HandleFunc("GET /repos/acme/widget/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /repos/acme/widget/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})
	f := newTestFetcher(t, mux)

	snap, err := f.Fetch(context.Background(), "https://github.com/acme/widget")

	require.NoError(t, err)
	assert.Empty(t, snap.Commits)
	assert.Empty(t, snap.Documentation)
}
