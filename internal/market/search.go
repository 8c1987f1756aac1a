package market

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Search defaults.
const (
	DefaultFetchConcurrency = 3
	DefaultFetchTimeout     = 5 * time.Second
	DefaultResultCount      = 5

	// maxPageChars caps extracted text per fetched page.
	maxPageChars = 5000

	fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// authDomains host pages that sit behind logins; their pages are
// skipped in favor of public sources.
var authDomains = []string{
	"linkedin.com", "facebook.com", "twitter.com", "x.com",
	"instagram.com", "reddit.com", "medium.com",
}

// Source is one search result backing a market figure.
type Source struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Snippet        string `json:"snippet"`
	ContentFetched bool   `json:"content_fetched"`
}

// MarketSize holds the figures extracted from search results. When the
// search cannot run (missing credentials, API failure) Value carries a
// human-readable placeholder instead of a figure.
type MarketSize struct {
	Value      string   `json:"value"`
	GrowthRate string   `json:"growth_rate"`
	Forecast   string   `json:"forecast"`
	Sources    []Source `json:"sources"`
}

// searchItem is one raw search hit.
type searchItem struct {
	Title   string
	Link    string
	Snippet string
}

// listFunc performs the raw web search. Swappable in tests.
type listFunc func(ctx context.Context, query string) ([]searchItem, error)

// SearchConfig configures the market searcher.
type SearchConfig struct {
	APIKey           string
	SearchEngineID   string
	FetchConcurrency int
	FetchTimeout     time.Duration
	ResultCount      int
}

// Searcher finds market-size figures via Google Custom Search plus
// page scraping.
type Searcher struct {
	config SearchConfig
	client *http.Client
	list   listFunc

	initOnce sync.Once
	svc      *customsearch.Service
	svcErr   error
}

// NewSearcher creates a market searcher. Missing credentials are
// tolerated; searches then return placeholder payloads.
func NewSearcher(cfg SearchConfig) *Searcher {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = DefaultResultCount
	}

	s := &Searcher{
		config: cfg,
		client: &http.Client{},
	}
	s.list = s.googleList
	return s
}

// googleList queries the Custom Search API.
func (s *Searcher) googleList(ctx context.Context, query string) ([]searchItem, error) {
	s.initOnce.Do(func() {
		s.svc, s.svcErr = customsearch.NewService(context.Background(),
			option.WithAPIKey(s.config.APIKey))
	})
	if s.svcErr != nil {
		return nil, fmt.Errorf("init custom search service: %w", s.svcErr)
	}

	resp, err := s.svc.Cse.List().
		Cx(s.config.SearchEngineID).
		Q(query).
		Num(int64(s.config.ResultCount)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	items := make([]searchItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, searchItem{Title: it.Title, Link: it.Link, Snippet: it.Snippet})
	}
	return items, nil
}

// SearchMarketSize searches for market-size data for a project. Every
// failure mode degrades to a descriptive placeholder payload; this
// never returns an error because market data is decorative, not
// load-bearing.
func (s *Searcher) SearchMarketSize(ctx context.Context, projectDescription, techStack string) MarketSize {
	if s.config.APIKey == "" {
		return MarketSize{
			Value:      "Data not available (Google API key not configured)",
			GrowthRate: "N/A",
			Forecast:   "N/A",
			Sources:    []Source{},
		}
	}
	if s.config.SearchEngineID == "" {
		return MarketSize{
			Value:      "Configure GOOGLE_SEARCH_ENGINE_ID for market data",
			GrowthRate: "N/A",
			Forecast:   "N/A",
			Sources:    []Source{},
		}
	}

	keywords := ExtractSectorKeywords(projectDescription, techStack)
	query := keywords + " market size 2024 forecast growth rate industry report"
	slog.Info("market_search", slog.String("query", query))

	items, err := s.list(ctx, query)
	if err != nil {
		slog.Warn("market_search_failed", slog.String("error", err.Error()))
		return MarketSize{
			Value:      fmt.Sprintf("Search error: %s", err.Error()),
			GrowthRate: "N/A",
			Forecast:   "N/A",
			Sources:    []Source{},
		}
	}
	if len(items) == 0 {
		return MarketSize{
			Value:      "No market data found",
			GrowthRate: "N/A",
			Forecast:   "N/A",
			Sources:    []Source{},
		}
	}

	filtered := filterAuthDomains(items)
	if len(filtered) > s.config.FetchConcurrency {
		filtered = filtered[:s.config.FetchConcurrency]
	}

	contents, sources := s.fetchAll(ctx, filtered)
	combined := strings.Join(contents, " ")

	return MarketSize{
		Value:      ExtractMarketValue(combined),
		GrowthRate: ExtractGrowthRate(combined),
		Forecast:   ExtractForecast(combined),
		Sources:    sources,
	}
}

// fetchAll fetches pages concurrently. A failed fetch degrades to the
// result's snippet; partial failures never fail the batch.
func (s *Searcher) fetchAll(ctx context.Context, items []searchItem) ([]string, []Source) {
	contents := make([]string, len(items))
	sources := make([]Source, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.FetchConcurrency)

	for i, item := range items {
		g.Go(func() error {
			text := s.fetchPage(gctx, item.Link)
			fetched := text != ""
			if !fetched {
				text = item.Snippet
			}
			contents[i] = text
			sources[i] = Source{
				Title:          item.Title,
				URL:            item.Link,
				Snippet:        item.Snippet,
				ContentFetched: fetched,
			}
			return nil
		})
	}
	_ = g.Wait()

	return contents, sources
}

// fetchPage downloads a page and extracts its visible text, capped at
// maxPageChars. Any failure returns empty.
func (s *Searcher) fetchPage(ctx context.Context, url string) string {
	reqCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("page_fetch_failed", slog.String("url", url), slog.String("error", err.Error()))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return ""
	}
	return extractText(doc)
}

// skippedElements do not contribute visible page text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true, "header": true,
}

// extractText collapses a parsed HTML tree into whitespace-normalized
// visible text.
func extractText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(sb.String()), " ")
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text
}

// filterAuthDomains drops login-walled results. If everything would be
// dropped, the original list is kept.
func filterAuthDomains(items []searchItem) []searchItem {
	var public []searchItem
	for _, item := range items {
		link := strings.ToLower(item.Link)
		blocked := false
		for _, domain := range authDomains {
			if strings.Contains(link, domain) {
				blocked = true
				break
			}
		}
		if !blocked {
			public = append(public, item)
		}
	}
	if len(public) == 0 {
		return items
	}
	return public
}
