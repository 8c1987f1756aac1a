// Package market researches the market a project sits in: a sector
// keyword extractor that turns a project description into a search
// query, a web search with bounded concurrent page fetches, regex
// extraction of market-size figures, and an analyzer that merges
// search data with model-generated competitive intelligence under a
// TTL cache.
package market

import (
	"fmt"
	"strings"
)

// sectorMapping pairs a trigger keyword with the sector it indicates.
// Order matters: the first matched sector drives the search query.
type sectorMapping struct {
	keyword string
	sector  string
}

// primarySectors maps description keywords to industry verticals.
var primarySectors = []sectorMapping{
	{"mental health", "mental health"},
	{"therapy", "mental health"},
	{"wellness", "wellness"},
	{"health", "healthcare"},
	{"medical", "healthcare"},
	{"fitness", "fitness"},
	{"education", "education"},
	{"learning", "education"},
	{"teaching", "education"},
	{"student", "education"},
	{"finance", "finance"},
	{"banking", "banking"},
	{"payment", "payments"},
	{"shopping", "e-commerce"},
	{"ecommerce", "e-commerce"},
	{"retail", "retail"},
	{"food", "food delivery"},
	{"restaurant", "food"},
	{"delivery", "delivery"},
	{"logistics", "logistics"},
	{"travel", "travel"},
	{"booking", "booking"},
	{"hotel", "hospitality"},
	{"social", "social media"},
	{"messaging", "messaging"},
	{"chat", "messaging"},
	{"productivity", "productivity"},
	{"collaboration", "collaboration"},
	{"workplace", "workplace"},
	{"code", "software development"},
	{"developer", "developer tools"},
	{"programming", "software development"},
	{"analytics", "analytics"},
	{"data", "data"},
	{"crm", "CRM"},
	{"sales", "sales"},
	{"marketing", "marketing"},
	{"hr", "HR"},
	{"recruitment", "recruitment"},
	{"hiring", "recruitment"},
	{"real estate", "real estate"},
	{"property", "real estate"},
	{"gaming", "gaming"},
	{"game", "gaming"},
	{"entertainment", "entertainment"},
	{"music", "music"},
	{"video", "video"},
	{"streaming", "streaming"},
	{"iot", "IoT"},
	{"blockchain", "blockchain"},
	{"crypto", "cryptocurrency"},
	{"nft", "NFT"},
}

// techModifiers maps tech-stack keywords to approach modifiers.
var techModifiers = []sectorMapping{
	{"ai", "AI-powered"},
	{"artificial intelligence", "AI-powered"},
	{"ml", "machine learning"},
	{"machine learning", "machine learning"},
	{"automation", "automation"},
	{"saas", "SaaS"},
	{"cloud", "cloud-based"},
	{"mobile", "mobile"},
	{"web", "web-based"},
	{"platform", "platform"},
	{"marketplace", "marketplace"},
}

// sectorSearchTerms expands a lone sector into a full search phrase.
var sectorSearchTerms = map[string]string{
	"mental health":        "mental health apps digital therapy wellness",
	"healthcare":           "healthcare digital health medical technology",
	"fitness":              "fitness wellness apps health tracking",
	"education":            "edtech education technology e-learning",
	"finance":              "fintech financial technology digital banking",
	"banking":              "digital banking fintech financial services",
	"payments":             "payment processing fintech digital payments",
	"e-commerce":           "e-commerce online retail digital commerce",
	"retail":               "retail technology digital retail",
	"food delivery":        "food delivery restaurant technology",
	"food":                 "food technology restaurant apps",
	"delivery":             "delivery logistics last-mile delivery",
	"logistics":            "logistics supply chain technology",
	"travel":               "travel technology tourism digital booking",
	"booking":              "booking reservation technology",
	"hospitality":          "hospitality technology hotel management",
	"social media":         "social media social networking",
	"messaging":            "messaging communication apps",
	"productivity":         "productivity software workplace tools",
	"collaboration":        "collaboration software team tools",
	"workplace":            "workplace technology enterprise software",
	"software development": "software development developer tools",
	"developer tools":      "developer tools software engineering",
	"analytics":            "data analytics business intelligence",
	"data":                 "data management big data",
	"CRM":                  "CRM customer relationship management",
	"sales":                "sales technology sales enablement",
	"marketing":            "marketing automation martech",
	"HR":                   "HR technology human resources software",
	"recruitment":          "recruitment hiring technology ATS",
	"real estate":          "proptech real estate technology",
	"gaming":               "gaming video games entertainment",
	"entertainment":        "entertainment media streaming",
	"music":                "music streaming audio entertainment",
	"video":                "video streaming media",
	"streaming":            "streaming media entertainment",
	"IoT":                  "IoT internet of things smart devices",
	"blockchain":           "blockchain cryptocurrency web3",
	"cryptocurrency":       "cryptocurrency blockchain digital assets",
	"NFT":                  "NFT digital collectibles blockchain",
}

// ExtractSectorKeywords turns a project description and tech stack
// into sector-focused search keywords. The query targets the industry
// and approach, not the app name, and combines overlapping sectors
// (AI + edtech, blockchain + gaming) into established search phrases.
func ExtractSectorKeywords(projectDescription, techStack string) string {
	combined := strings.ToLower(projectDescription + " " + techStack)

	var sectors []string
	for _, m := range primarySectors {
		if strings.Contains(combined, m.keyword) && !contains(sectors, m.sector) {
			sectors = append(sectors, m.sector)
		}
	}

	var modifiers []string
	for _, m := range techModifiers {
		if strings.Contains(combined, m.keyword) && !contains(modifiers, m.sector) {
			modifiers = append(modifiers, m.sector)
		}
	}

	switch {
	case len(sectors) > 0 && len(modifiers) > 0:
		if phrase := specialCombination(sectors, modifiers); phrase != "" {
			return phrase
		}
		return fmt.Sprintf("%s %s technology market", modifiers[0], sectors[0])

	case len(sectors) > 0:
		if terms, ok := sectorSearchTerms[sectors[0]]; ok {
			return terms
		}
		return fmt.Sprintf("%s technology software", sectors[0])

	case len(modifiers) > 0:
		return fmt.Sprintf("%s software applications", modifiers[0])
	}

	if techStack != "" && techStack != "Software Development" {
		return fmt.Sprintf("%s software applications", techStack)
	}
	return "software applications SaaS"
}

// specialCombination returns the curated phrase for well-known
// sector+modifier pairings, or empty when none applies.
func specialCombination(sectors, modifiers []string) string {
	hasAI := false
	for _, m := range modifiers {
		if strings.Contains(m, "AI") || strings.Contains(m, "machine learning") {
			hasAI = true
			break
		}
	}

	switch {
	case contains(sectors, "education") && hasAI:
		return "AI in education edtech artificial intelligence learning platforms educational technology"
	case contains(sectors, "healthcare") && hasAI:
		return "AI in healthcare digital health artificial intelligence medical technology"
	case contains(sectors, "finance") && hasAI:
		return "AI in finance fintech artificial intelligence financial services"
	case contains(sectors, "mental health") && hasAI:
		return "AI mental health digital therapy artificial intelligence wellness apps"
	case contains(sectors, "fitness") && hasAI:
		return "AI fitness wellness artificial intelligence health tracking"
	case contains(sectors, "gaming") && contains(sectors, "blockchain"):
		return "blockchain gaming NFT gaming web3 games"
	case contains(sectors, "real estate") && contains(sectors, "blockchain"):
		return "blockchain real estate proptech tokenization"
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
