package market

import (
	"fmt"
	"strings"
)

// hasRealValue reports whether a market-size value is a figure rather
// than one of the placeholder messages.
func hasRealValue(value string) bool {
	if value == "" || value == "N/A" {
		return false
	}
	lower := strings.ToLower(value)
	return !strings.Contains(lower, "not found") &&
		!strings.Contains(lower, "not available") &&
		!strings.Contains(lower, "configure") &&
		!strings.Contains(lower, "search results") &&
		!strings.Contains(lower, "search error")
}

// FormatForSlide renders an analysis as market-slide bullet content.
func (a Analysis) FormatForSlide() string {
	var parts []string

	if hasRealValue(a.MarketSize.Value) {
		parts = append(parts, fmt.Sprintf("• Market Size: %s", a.MarketSize.Value))
		if hasRealValue(a.MarketSize.GrowthRate) {
			parts = append(parts, fmt.Sprintf("• Growth Rate: %s", a.MarketSize.GrowthRate))
		}
	}

	if trends := firstN(a.Trends.CurrentTrends, 2); len(trends) > 0 {
		parts = append(parts, "• Key Trends:")
		for _, trend := range trends {
			parts = append(parts, fmt.Sprintf("  - %s", trend))
		}
	}

	if competitors := firstN(a.CompetitiveLandscape.KeyCompetitors, 3); len(competitors) > 0 {
		parts = append(parts, fmt.Sprintf("• Key Competitors: %s", strings.Join(competitors, ", ")))
	}

	if opportunities := firstN(a.Trends.Opportunities, 2); len(opportunities) > 0 {
		parts = append(parts, "• Market Opportunities:")
		for _, opp := range opportunities {
			parts = append(parts, fmt.Sprintf("  - %s", opp))
		}
	}

	if len(parts) == 0 {
		return "Market analysis in progress. Conduct additional research before presenting."
	}
	return strings.Join(parts, "\n")
}

// FormatSpeakerNotes renders an analysis as presenter notes for the
// market slide.
func (a Analysis) FormatSpeakerNotes() string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Market Overview: The market is valued at %s with a growth rate of %s. %s",
		orNA(a.MarketSize.Value), orNA(a.MarketSize.GrowthRate), a.MarketSize.Forecast))

	if len(a.CompetitiveLandscape.KeyCompetitors) > 0 || a.CompetitiveLandscape.CompetitiveAdvantage != "" {
		advantage := a.CompetitiveLandscape.CompetitiveAdvantage
		if advantage == "" {
			advantage = "To be determined"
		}
		parts = append(parts, fmt.Sprintf(
			"Competitive Landscape: Main competitors include %s. Our advantage: %s",
			strings.Join(firstN(a.CompetitiveLandscape.KeyCompetitors, 3), ", "), advantage))
	}

	if len(a.Trends.CurrentTrends) > 0 {
		parts = append(parts, fmt.Sprintf("Key Trends: %s",
			strings.Join(firstN(a.Trends.CurrentTrends, 3), ", ")))
	}

	if a.TargetMarket.SegmentSize != "" || len(a.TargetMarket.PainPoints) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Target Market: Segment size is %s. Key pain points: %s",
			orNA(a.TargetMarket.SegmentSize),
			strings.Join(firstN(a.TargetMarket.PainPoints, 2), ", ")))
	}

	if len(a.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("Sources: %s",
			strings.Join(firstN(a.Sources, 3), ", ")))
	}

	return strings.Join(parts, "\n\n")
}

// FormatForPrompt renders an analysis for inclusion in the deck
// drafting prompt.
func (a Analysis) FormatForPrompt() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Market Size: %s", orNA(a.MarketSize.Value)))
	parts = append(parts, fmt.Sprintf("Growth Rate: %s", orNA(a.MarketSize.GrowthRate)))
	parts = append(parts, fmt.Sprintf("Forecast: %s", orNA(a.MarketSize.Forecast)))

	parts = append(parts, fmt.Sprintf("\nKey Competitors: %s",
		strings.Join(a.CompetitiveLandscape.KeyCompetitors, ", ")))
	parts = append(parts, fmt.Sprintf("Competitive Advantage: %s",
		orNA(a.CompetitiveLandscape.CompetitiveAdvantage)))

	parts = append(parts, fmt.Sprintf("\nCurrent Trends: %s",
		strings.Join(a.Trends.CurrentTrends, ", ")))
	parts = append(parts, fmt.Sprintf("Opportunities: %s",
		strings.Join(a.Trends.Opportunities, ", ")))

	return strings.Join(parts, "\n")
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
