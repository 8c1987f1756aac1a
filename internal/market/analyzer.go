package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/deckforge/deckforge/internal/cache"
	"github.com/deckforge/deckforge/internal/llm"
)

// CompetitiveLandscape describes who else plays in the market.
type CompetitiveLandscape struct {
	KeyCompetitors       llm.StringOrList `json:"key_competitors"`
	MarketLeaders        llm.StringOrList `json:"market_leaders"`
	CompetitiveAdvantage string           `json:"competitive_advantage"`
}

// Trends describes where the market is heading.
type Trends struct {
	CurrentTrends llm.StringOrList `json:"current_trends"`
	Opportunities llm.StringOrList `json:"opportunities"`
	Challenges    llm.StringOrList `json:"challenges"`
}

// TargetMarket describes the buyer segment.
type TargetMarket struct {
	SegmentSize     string           `json:"segment_size"`
	PainPoints      llm.StringOrList `json:"pain_points"`
	AdoptionDrivers llm.StringOrList `json:"adoption_drivers"`
}

// Analysis is the full market analysis: searched market-size figures
// merged with model-generated competitive intelligence.
type Analysis struct {
	MarketSize           MarketSize           `json:"market_size"`
	CompetitiveLandscape CompetitiveLandscape `json:"competitive_landscape"`
	Trends               Trends               `json:"trends"`
	TargetMarket         TargetMarket         `json:"target_market"`
	Sources              llm.StringOrList     `json:"sources"`

	// FromCache marks analyses served from the result cache.
	FromCache bool `json:"-"`
}

// Request identifies one market analysis. The three identity fields
// form the cache key; the two focus fields steer the prompt only.
type Request struct {
	ProjectDescription string
	TechStack          string
	TargetAudience     string

	MarketFocus     string
	CompetitorAngle string
}

// Completer is the inference capability the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Analyzer produces cached market analyses.
type Analyzer struct {
	searcher *Searcher
	client   Completer
	cache    *cache.Cache
}

// NewAnalyzer creates a market analyzer. The cache may be nil to
// disable memoization.
func NewAnalyzer(searcher *Searcher, client Completer, resultCache *cache.Cache) *Analyzer {
	return &Analyzer{searcher: searcher, client: client, cache: resultCache}
}

// cacheKey derives the result-cache key for a request. Order- and
// case-sensitive over exactly the three identity fields.
func cacheKey(req Request) string {
	return cache.Key(req.ProjectDescription, req.TechStack, req.TargetAudience)
}

// Generate returns the market analysis for a request, from cache when
// a fresh entry exists. Model failures degrade to search data with
// empty competitive fields; this never returns an error.
func (a *Analyzer) Generate(ctx context.Context, req Request) Analysis {
	key := cacheKey(req)
	if a.cache != nil {
		if payload, ok := a.cache.Get(ctx, key); ok {
			var cached Analysis
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				slog.Info("market_analysis_cache_hit", slog.String("key", key[:8]))
				cached.FromCache = true
				return cached
			}
			slog.Warn("market_analysis_cache_corrupt", slog.String("key", key[:8]))
		}
	}

	marketSize := a.searcher.SearchMarketSize(ctx, req.ProjectDescription, req.TechStack)

	analysis := Analysis{MarketSize: marketSize}
	intel, err := a.competitiveIntelligence(ctx, req)
	if err != nil {
		slog.Warn("competitive_intelligence_failed",
			slog.String("audience", req.TargetAudience),
			slog.String("error", err.Error()))
		analysis.CompetitiveLandscape = CompetitiveLandscape{CompetitiveAdvantage: "Data not available"}
		analysis.TargetMarket = TargetMarket{SegmentSize: "Data not available"}
	} else {
		analysis.CompetitiveLandscape = intel.CompetitiveLandscape
		analysis.Trends = intel.Trends
		analysis.TargetMarket = intel.TargetMarket
		analysis.Sources = intel.Sources
	}

	if a.cache != nil {
		payload, err := json.Marshal(analysis)
		if err == nil {
			err = a.cache.Put(ctx, key, string(payload))
		}
		if err != nil {
			slog.Warn("market_analysis_cache_write_failed", slog.String("error", err.Error()))
		}
	}
	return analysis
}

// intelPayload is the model's share of the analysis (everything but
// market size, which comes from search).
type intelPayload struct {
	CompetitiveLandscape CompetitiveLandscape `json:"competitive_landscape"`
	Trends               Trends               `json:"trends"`
	TargetMarket         TargetMarket         `json:"target_market"`
	Sources              llm.StringOrList     `json:"sources"`
}

func (a *Analyzer) competitiveIntelligence(ctx context.Context, req Request) (intelPayload, error) {
	output, err := a.client.Complete(ctx, buildIntelPrompt(req))
	if err != nil {
		return intelPayload{}, err
	}

	var payload intelPayload
	if err := llm.DecodeJSON(output, &payload); err != nil {
		return intelPayload{}, err
	}
	return payload, nil
}

func buildIntelPrompt(req Request) string {
	marketFocus := req.MarketFocus
	if marketFocus == "" {
		marketFocus = "competitive landscape and market opportunity"
	}
	competitorAngle := req.CompetitorAngle
	if competitorAngle == "" {
		competitorAngle = "competitive advantages"
	}

	return fmt.Sprintf(`You are a market research analyst. Research the market for this project.

Project to analyze:
- Description: %s
- Tech Stack: %s
- Target Audience: %s

CRITICAL AUDIENCE-SPECIFIC FOCUS:
This analysis is for %[3]s. They care most about: %[4]s

When analyzing competitors, focus on: %[5]s

Research:

1. **Competitor Research** (TAILORED FOR %[3]s):
   - Identify key competitors
   - Focus on %[5]s
   - Highlight what makes this project stand out in ways that matter to %[3]s

2. **Market Trends** (RELEVANT TO %[3]s):
   - Find industry trends
   - Focus on %[4]s
   - Identify opportunities that align with %[3]s priorities

3. **Target Audience Insights**:
   - Research specific needs and pain points of %[3]s
   - Understand what they value most in solutions

Note: Market size data will be provided separately, so focus on competitive landscape, trends, and opportunities.

After gathering information, synthesize it into a structured analysis. Return ONLY valid JSON with this structure:

{
  "competitive_landscape": {
    "key_competitors": ["List of 3-5 main competitors"],
    "market_leaders": ["Top 2-3 market leaders"],
    "competitive_advantage": "How this project differentiates"
  },
  "trends": {
    "current_trends": ["3-5 key market trends"],
    "opportunities": ["2-3 market opportunities"],
    "challenges": ["2-3 market challenges"]
  },
  "target_market": {
    "segment_size": "Size of target market segment",
    "pain_points": ["3-4 key pain points"],
    "adoption_drivers": ["2-3 factors driving adoption"]
  },
  "sources": ["List of URLs used for research"]
}

Important:
- Be realistic and data-driven
- If data is not available, indicate "Data not available" rather than making up numbers
- Return ONLY the JSON, no markdown formatting`,
		req.ProjectDescription, req.TechStack, req.TargetAudience, marketFocus, competitorAngle)
}
