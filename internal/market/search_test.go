package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMarketSize_MissingAPIKeyIsPlaceholder(t *testing.T) {
	s := NewSearcher(SearchConfig{})

	got := s.SearchMarketSize(context.Background(), "edtech app", "Python")

	assert.Contains(t, got.Value, "not configured")
	assert.Equal(t, "N/A", got.GrowthRate)
	assert.Empty(t, got.Sources)
}

func TestSearchMarketSize_MissingEngineIDIsPlaceholder(t *testing.T) {
	s := NewSearcher(SearchConfig{APIKey: "key"})

	got := s.SearchMarketSize(context.Background(), "edtech app", "Python")

	assert.Contains(t, got.Value, "GOOGLE_SEARCH_ENGINE_ID")
}

func TestSearchMarketSize_ExtractsFiguresFromFetchedPages(t *testing.T) {
	// Given a page with market figures behind a search result
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><style>body{}</style></head><body>
			<nav>ignore this</nav>
			<p>The market was valued at $12.5 billion and grows at a 14% CAGR,
			projected to reach $30 billion by 2030.</p>
		</body></html>`))
	}))
	defer page.Close()

	s := NewSearcher(SearchConfig{APIKey: "key", SearchEngineID: "cx", FetchTimeout: 2 * time.Second})
	s.list = func(ctx context.Context, query string) ([]searchItem, error) {
		assert.Contains(t, query, "market size 2024")
		return []searchItem{{Title: "Industry Report", Link: page.URL, Snippet: "snippet"}}, nil
	}

	got := s.SearchMarketSize(context.Background(), "edtech learning app", "Python")

	assert.Equal(t, "$12.5 billion", got.Value)
	assert.Contains(t, got.GrowthRate, "14% CAGR")
	assert.Contains(t, got.Forecast, "2030")
	require.Len(t, got.Sources, 1)
	assert.True(t, got.Sources[0].ContentFetched)
}

func TestSearchMarketSize_FailedFetchDegradesToSnippet(t *testing.T) {
	s := NewSearcher(SearchConfig{APIKey: "key", SearchEngineID: "cx", FetchTimeout: time.Second})
	s.list = func(ctx context.Context, query string) ([]searchItem, error) {
		return []searchItem{{
			Title:   "Report",
			Link:    "http://127.0.0.1:1/unreachable",
			Snippet: "market valued at $7 billion",
		}}, nil
	}

	got := s.SearchMarketSize(context.Background(), "fintech payments", "Go")

	assert.Equal(t, "$7 billion", got.Value)
	require.Len(t, got.Sources, 1)
	assert.False(t, got.Sources[0].ContentFetched)
}

func TestSearchMarketSize_SearchErrorIsPlaceholder(t *testing.T) {
	s := NewSearcher(SearchConfig{APIKey: "key", SearchEngineID: "cx"})
	s.list = func(ctx context.Context, query string) ([]searchItem, error) {
		return nil, assert.AnError
	}

	got := s.SearchMarketSize(context.Background(), "edtech", "Python")

	assert.Contains(t, got.Value, "Search error")
}

func TestFilterAuthDomains(t *testing.T) {
	items := []searchItem{
		{Link: "https://www.linkedin.com/pulse/report"},
		{Link: "https://example.com/industry-report"},
		{Link: "https://medium.com/@a/post"},
	}

	got := filterAuthDomains(items)

	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/industry-report", got[0].Link)
}

func TestFilterAuthDomains_KeepsAllWhenEverythingIsWalled(t *testing.T) {
	items := []searchItem{{Link: "https://medium.com/a"}, {Link: "https://reddit.com/r/b"}}
	assert.Equal(t, items, filterAuthDomains(items))
}
