// Package deck drafts and renders audience-tailored pitch decks from
// repository context and market analysis.
package deck

// Audience describes who a deck is pitched to and what they care
// about. Focus and tone steer slide content; market focus and
// competitor angle steer the market analysis.
type Audience struct {
	Key             string `json:"key"`
	Label           string `json:"label"`
	Focus           string `json:"focus"`
	Tone            string `json:"tone"`
	MarketFocus     string `json:"market_focus"`
	CompetitorAngle string `json:"competitor_angle"`
}

// DefaultAudienceKey is used when a request names no audience.
const DefaultAudienceKey = "general_audience"

// audienceOrder fixes the listing order of the registry.
var audienceOrder = []string{
	"seed_investors",
	"series_a_investors",
	"enterprise_buyers",
	"technical_team",
	"product_managers",
	"general_audience",
}

var audiences = map[string]Audience{
	"seed_investors": {
		Key:             "seed_investors",
		Label:           "Seed Stage Investors",
		Focus:           "problem-solution fit, market opportunity, founding team, early traction, funding ask",
		Tone:            "compelling, data-driven, visionary",
		MarketFocus:     "market size, growth potential, timing, competitive landscape gaps",
		CompetitorAngle: "market positioning, unique approach, competitive moats",
	},
	"series_a_investors": {
		Key:             "series_a_investors",
		Label:           "Series A Investors",
		Focus:           "product-market fit, growth metrics, unit economics, competitive advantage, scaling strategy",
		Tone:            "metrics-focused, strategic, proven",
		MarketFocus:     "market share potential, growth metrics, competitive advantages, barriers to entry",
		CompetitorAngle: "market leadership potential, sustainable advantages, winner-take-most dynamics",
	},
	"enterprise_buyers": {
		Key:             "enterprise_buyers",
		Label:           "Enterprise Buyers",
		Focus:           "ROI, security, integration, support, compliance, case studies",
		Tone:            "professional, trustworthy, technical",
		MarketFocus:     "enterprise readiness, compliance, security, vendor stability",
		CompetitorAngle: "enterprise features, support quality, compliance certifications",
	},
	"technical_team": {
		Key:             "technical_team",
		Label:           "Technical Team / Engineers",
		Focus:           "architecture, tech stack, scalability, code quality, developer experience, documentation",
		Tone:            "technical, detailed, pragmatic",
		MarketFocus:     "competitive differentiation, technical advantages, developer ecosystem, integration capabilities",
		CompetitorAngle: "technical superiority, performance benchmarks, developer experience comparison",
	},
	"product_managers": {
		Key:             "product_managers",
		Label:           "Product Managers",
		Focus:           "features, roadmap, user experience, market fit, competitive analysis",
		Tone:            "strategic, user-focused, analytical",
		MarketFocus:     "ease of integration, time-to-value, user adoption, feature parity",
		CompetitorAngle: "feature comparison, integration ease, user experience advantages",
	},
	"general_audience": {
		Key:             "general_audience",
		Label:           "General Audience",
		Focus:           "what it does, why it matters, key benefits, use cases",
		Tone:            "accessible, clear, engaging",
		MarketFocus:     "everyday use cases, practical benefits, accessibility, value proposition",
		CompetitorAngle: "simplicity, usability, real-world benefits",
	},
}

// audienceRequirements steers deck drafting per audience.
var audienceRequirements = map[string]string{
	"technical_team": `
- Focus on WHY this tool stands out from competitors technically
- Highlight performance benchmarks, architecture advantages, code quality
- Emphasize developer experience improvements over alternatives
- Show technical differentiators (better APIs, cleaner architecture, faster performance)
- Compare integration complexity vs competitors
- Demonstrate technical superiority with concrete examples`,

	"product_managers": `
- Focus on ease of integration within existing systems
- Highlight time-to-value and quick wins
- Show feature parity or advantages over competitors
- Emphasize user adoption metrics and UX improvements
- Demonstrate how it fits into current workflows
- Compare integration effort vs competitors`,

	"general_audience": `
- Focus on practical everyday use cases
- Explain how it makes life easier in simple terms
- Show real-world benefits anyone can understand
- Emphasize simplicity and accessibility over competitors
- Demonstrate value without technical jargon
- Compare usability vs alternatives`,

	"seed_investors": `
- Focus on market timing and opportunity gaps
- Highlight unique approach vs existing solutions
- Show early traction or validation
- Emphasize competitive moats and defensibility
- Demonstrate market positioning strategy
- Compare market opportunity vs alternatives`,

	"series_a_investors": `
- Focus on sustainable competitive advantages
- Highlight growth metrics and market share potential
- Show barriers to entry and network effects
- Emphasize winner-take-most dynamics
- Demonstrate path to market leadership
- Compare competitive positioning vs alternatives`,

	"enterprise_buyers": `
- Focus on enterprise readiness and compliance
- Highlight security, support, and SLAs
- Show ROI and total cost of ownership
- Emphasize vendor stability and long-term support
- Demonstrate enterprise features vs competitors
- Compare compliance certifications vs alternatives`,
}

// AudienceConfig returns the audience for a key, falling back to the
// general audience for unknown keys.
func AudienceConfig(key string) Audience {
	if a, ok := audiences[key]; ok {
		return a
	}
	return audiences[DefaultAudienceKey]
}

// KnownAudience reports whether key names a registered audience.
func KnownAudience(key string) bool {
	_, ok := audiences[key]
	return ok
}

// Audiences returns all registered audiences in a stable order.
func Audiences() []Audience {
	out := make([]Audience, 0, len(audienceOrder))
	for _, key := range audienceOrder {
		out = append(out, audiences[key])
	}
	return out
}

func requirementsFor(key string) string {
	if r, ok := audienceRequirements[key]; ok {
		return r
	}
	return audienceRequirements[DefaultAudienceKey]
}
