package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/internal/cache"
	"github.com/deckforge/deckforge/internal/deck"
	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/llm"
	"github.com/deckforge/deckforge/internal/pipeline"
)

type fakeGenerator struct {
	result pipeline.Result
	err    error
	url    string
	key    string
}

func (f *fakeGenerator) GeneratePitchDeck(ctx context.Context, repoURL, audienceKey string) (pipeline.Result, error) {
	f.url = repoURL
	f.key = audienceKey
	if f.err != nil {
		return pipeline.Result{}, f.err
	}
	return f.result, nil
}

type fakeCache struct {
	stats   cache.Stats
	removed int
	err     error
}

func (f *fakeCache) CacheStats(ctx context.Context) (cache.Stats, error) {
	return f.stats, f.err
}

func (f *fakeCache) SweepExpired(ctx context.Context) (int, error) {
	return f.removed, f.err
}

func newTestServer(t *testing.T, gen Generator, rc ResultCache) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	if gen == nil {
		gen = &fakeGenerator{}
	}
	if rc == nil {
		rc = &fakeCache{}
	}
	return New(gen, rc, dir), dir
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "deckforge", body["service"])
}

func TestTargetAudiences(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/target-audiences", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Audiences []deck.Audience `json:"audiences"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Audiences, 6)
	assert.Equal(t, "seed_investors", body.Audiences[0].Key)
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{result: pipeline.Result{
		Deck: deck.Deck{Title: "Widget", Slides: []deck.Slide{
			{Title: "Cover", Content: llm.StringOrList{"x"}},
		}},
		Artifacts: deck.Artifacts{
			MarkdownPath: "/out/pitch_deck_abc_general_audience.md",
			ScriptPath:   "/out/script_abc_general_audience.txt",
		},
	}}
	s, _ := newTestServer(t, gen, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pitch-deck",
		strings.NewReader(`{"repository_url": "https://github.com/a/b", "audience_key": "seed_investors"}`))

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://github.com/a/b", gen.url)
	assert.Equal(t, "seed_investors", gen.key)

	var body generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "/download/pitch_deck_abc_general_audience.md", body.DownloadURL)
	assert.Equal(t, "/download/script_abc_general_audience.txt", body.ScriptURL)
	require.NotNil(t, body.PitchData)
	assert.Equal(t, "Widget", body.PitchData.Title)
}

func TestGenerate_MissingURL(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pitch-deck",
		strings.NewReader(`{"audience_key": "seed_investors"}`))

	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", deckerrors.New(deckerrors.ErrCodeInvalidInput, "bad audience", nil), http.StatusBadRequest},
		{"unreachable", deckerrors.New(deckerrors.ErrCodeRepoUnreachable, "gone", nil), http.StatusBadGateway},
		{"nothing to index", deckerrors.New(deckerrors.ErrCodeNothingToIndex, "empty", nil), http.StatusUnprocessableEntity},
		{"foreign error", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeGenerator{err: tt.err}, nil)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/generate-pitch-deck",
				strings.NewReader(`{"repository_url": "https://github.com/a/b"}`))

			s.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			var body generateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestDownload(t *testing.T) {
	s, dir := newTestServer(t, nil, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script_abc_general.txt"), []byte("# Presentation Script"), 0o644))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/script_abc_general.txt", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Presentation Script")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "script_abc_general.txt")
}

func TestDownload_HiddenFileRejected(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/.env", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownload_MissingFile(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/nope.txt", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCacheStats(t *testing.T) {
	rc := &fakeCache{stats: cache.Stats{TotalEntries: 3, ExpiredEntries: 1, ValidEntries: 2}}
	s, _ := newTestServer(t, nil, rc)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, rc.stats, stats)
}

func TestCacheSweep(t *testing.T) {
	s, _ := newTestServer(t, nil, &fakeCache{removed: 4})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cache/sweep", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 4, body["cleared_entries"])
	assert.Contains(t, body["message"], "4 expired")
}
