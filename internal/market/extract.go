package market

import (
	"regexp"
	"strings"
)

// Fallback strings when no figure can be extracted from fetched pages.
const (
	noMarketValue = "See search results for market size estimates"
	noGrowthRate  = "See search results for growth rate estimates"
	noForecast    = "See search results for forecast estimates"
)

// marketValuePatterns match dollar figures like "$4.5 billion" or
// "USD 120 million", tried in order of specificity.
var marketValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s*[\d,]+\.?\d*\s*(?:billion|trillion|million|B|T|M)\b`),
	regexp.MustCompile(`(?i)(?:USD|US\$)\s*[\d,]+\.?\d*\s*(?:billion|trillion|million|B|T|M)\b`),
	regexp.MustCompile(`(?i)[\d,]+\.?\d*\s*(?:billion|trillion|million)\s*(?:dollars|USD|US\$)`),
	regexp.MustCompile(`(?i)(?:valued|worth|size|market).*?\$\s*[\d,]+\.?\d*\s*(?:billion|trillion|million|B|T|M)`),
	regexp.MustCompile(`(?i)(?:valued|worth|size|market).*?[\d,]+\.?\d*\s*(?:billion|trillion|million)`),
}

// growthRatePatterns match CAGR and growth-percentage phrasings.
var growthRatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[\d.]+\s*%\s*CAGR`),
	regexp.MustCompile(`(?i)CAGR\s+of\s+[\d.]+\s*%`),
	regexp.MustCompile(`(?i)compound\s+annual\s+growth\s+rate.*?[\d.]+\s*%`),
	regexp.MustCompile(`(?i)grow(?:ing|th|s)?\s+(?:at|by|of)\s+[\d.]+\s*%`),
	regexp.MustCompile(`(?i)[\d.]+\s*%\s+(?:annual|yearly)\s+growth`),
	regexp.MustCompile(`(?i)growth\s+rate.*?[\d.]+\s*%`),
	regexp.MustCompile(`(?i)[\d.]+\s*%.*?(?:growth|CAGR)`),
}

// forecastPatterns match projections tying a dollar figure to a year.
var forecastPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:by|reach|expected|projected|forecast).*?\$\s*[\d,]+\.?\d*\s*(?:billion|trillion|million|B|T|M).*?(?:by|in)\s+\d{4}`),
	regexp.MustCompile(`(?i)(?:by|in)\s+\d{4}.*?\$\s*[\d,]+\.?\d*\s*(?:billion|trillion|million|B|T|M)`),
	regexp.MustCompile(`(?i)\d{4}.*?(?:reach|expected|projected).*?\$\s*[\d,]+\.?\d*\s*(?:billion|trillion|million|B|T|M)`),
	regexp.MustCompile(`(?i)(?:reach|expected|projected).*?[\d,]+\.?\d*\s*(?:billion|trillion|million).*?\d{4}`),
}

func firstMatch(patterns []*regexp.Regexp, text, fallback string) string {
	for _, p := range patterns {
		if m := p.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return fallback
}

// ExtractMarketValue pulls a market valuation out of page text.
func ExtractMarketValue(text string) string {
	return firstMatch(marketValuePatterns, text, noMarketValue)
}

// ExtractGrowthRate pulls a growth rate out of page text.
func ExtractGrowthRate(text string) string {
	return firstMatch(growthRatePatterns, text, noGrowthRate)
}

// ExtractForecast pulls a future-projection statement out of page text.
func ExtractForecast(text string) string {
	return firstMatch(forecastPatterns, text, noForecast)
}
