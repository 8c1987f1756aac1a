package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMarketValue(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"dollar billion", "The global edtech market reached $404 billion last year.", "$404 billion"},
		{"usd prefix", "Analysts put it at USD 89.5 billion in 2024.", "USD 89.5 billion"},
		{"spelled dollars", "estimated at 12.3 billion dollars overall", "12.3 billion dollars"},
		{"no figure", "a very promising market indeed", noMarketValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMarketValue(tt.text))
		})
	}
}

func TestExtractGrowthRate(t *testing.T) {
	assert.Equal(t, "16.5 % CAGR", ExtractGrowthRate("expanding at a 16.5 % CAGR through 2030"))
	assert.Equal(t, "CAGR of 12.1%", ExtractGrowthRate("a CAGR of 12.1% is expected"))
	assert.Equal(t, "growing at 8%", ExtractGrowthRate("the segment is growing at 8% annually"))
	assert.Equal(t, noGrowthRate, ExtractGrowthRate("steady growth expected"))
}

func TestExtractForecast(t *testing.T) {
	got := ExtractForecast("The market is projected to reach $1.2 trillion by 2030.")
	assert.Contains(t, got, "$1.2 trillion")
	assert.Contains(t, got, "2030")

	assert.Equal(t, noForecast, ExtractForecast("the future looks bright"))
}

func TestFormatForSlide_WithData(t *testing.T) {
	a := Analysis{
		MarketSize: MarketSize{Value: "$5B", GrowthRate: "10% CAGR"},
		Trends: Trends{
			CurrentTrends: []string{"trend one", "trend two", "trend three"},
			Opportunities: []string{"opp one"},
		},
		CompetitiveLandscape: CompetitiveLandscape{
			KeyCompetitors: []string{"A", "B", "C", "D"},
		},
	}

	got := a.FormatForSlide()

	assert.Contains(t, got, "• Market Size: $5B")
	assert.Contains(t, got, "• Growth Rate: 10% CAGR")
	assert.Contains(t, got, "- trend one")
	assert.NotContains(t, got, "trend three", "only the top two trends appear")
	assert.Contains(t, got, "• Key Competitors: A, B, C")
	assert.NotContains(t, got, "D")
	assert.Contains(t, got, "- opp one")
}

func TestFormatForSlide_PlaceholderValueIsSkipped(t *testing.T) {
	a := Analysis{MarketSize: MarketSize{Value: "Data not available (Google API key not configured)"}}

	got := a.FormatForSlide()

	assert.NotContains(t, got, "Market Size:")
	assert.Contains(t, got, "Market analysis in progress")
}

func TestFormatSpeakerNotes(t *testing.T) {
	a := Analysis{
		MarketSize: MarketSize{Value: "$5B", GrowthRate: "10% CAGR", Forecast: "reach $9B by 2030"},
		CompetitiveLandscape: CompetitiveLandscape{
			KeyCompetitors:       []string{"A", "B"},
			CompetitiveAdvantage: "faster indexing",
		},
		Sources: []string{"https://example.com/report"},
	}

	got := a.FormatSpeakerNotes()

	assert.Contains(t, got, "valued at $5B")
	assert.Contains(t, got, "Main competitors include A, B")
	assert.Contains(t, got, "Our advantage: faster indexing")
	assert.Contains(t, got, "https://example.com/report")
}
