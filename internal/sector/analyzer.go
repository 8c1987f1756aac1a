// Package sector classifies what a repository is for: its primary
// industry sector and the technologies it actually uses. The model is
// grounded on retrieved repository context; when the call fails the
// package falls back to keyword detection so generation can continue.
package sector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deckforge/deckforge/internal/llm"
)

// Analysis is the sector classification result.
type Analysis struct {
	PrimarySector string   `json:"primary_sector"`
	SecondaryTech []string `json:"secondary_tech"`
	Description   string   `json:"description"`
	KeyFeatures   []string `json:"key_features,omitempty"`

	// FromFallback marks results produced by keyword detection after a
	// failed model call.
	FromFallback bool `json:"-"`
}

// maxContextChars bounds how much repository context goes into the
// classification prompt.
const maxContextChars = 5000

// Completer is the inference capability the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Analyzer classifies repositories.
type Analyzer struct {
	client Completer
}

// New creates a sector analyzer.
func New(client Completer) *Analyzer {
	return &Analyzer{client: client}
}

type sectorPayload struct {
	PrimarySector string           `json:"primary_sector"`
	SecondaryTech llm.StringOrList `json:"secondary_tech"`
	Description   string           `json:"description"`
	KeyFeatures   llm.StringOrList `json:"key_features"`
}

// Analyze classifies a repository from its retrieved context. Model or
// parse failures degrade to keyword-based detection, never an error.
func (a *Analyzer) Analyze(ctx context.Context, repoName, repoContext string) Analysis {
	output, err := a.client.Complete(ctx, buildPrompt(repoName, repoContext))
	if err != nil {
		slog.Warn("sector_analysis_failed_using_fallback",
			slog.String("repo", repoName),
			slog.String("error", err.Error()))
		return fallback(repoName, repoContext)
	}

	var payload sectorPayload
	if err := llm.DecodeJSON(output, &payload); err != nil {
		slog.Warn("sector_analysis_unparseable_using_fallback",
			slog.String("repo", repoName),
			slog.String("error", err.Error()))
		return fallback(repoName, repoContext)
	}

	analysis := Analysis{
		PrimarySector: payload.PrimarySector,
		SecondaryTech: payload.SecondaryTech,
		Description:   payload.Description,
		KeyFeatures:   payload.KeyFeatures,
	}
	if analysis.PrimarySector == "" {
		analysis.PrimarySector = "software"
	}
	if analysis.Description == "" {
		analysis.Description = repoName
	}
	return analysis
}

func buildPrompt(repoName, repoContext string) string {
	if len(repoContext) > maxContextChars {
		repoContext = repoContext[:maxContextChars]
	}

	return fmt.Sprintf(`CRITICAL: Analyze ONLY the actual repository content provided below. Do NOT make assumptions or add information not present in the content.

Repository: %s

ACTUAL REPOSITORY CONTENT:
%s

Extract from the ACTUAL content above:
1. PRIMARY purpose/sector (e.g., education, healthcare, finance)
2. ACTUAL technologies/dependencies used (check package.json, requirements.txt, imports, etc.)
3. Brief description based on README or code
4. Key features mentioned in the code or documentation

IMPORTANT:
- Only list technologies that are ACTUALLY mentioned in the content
- Do NOT guess or hallucinate technologies
- Base your analysis ONLY on the provided content

Respond in JSON format:
{
    "primary_sector": "education/healthcare/finance/etc",
    "secondary_tech": ["AI", "machine learning"],
    "description": "Brief description based on actual content",
    "key_features": ["feature1", "feature2"]
}`, repoName, repoContext)
}

// techIndicators maps a detectable technology to the keywords that
// reveal it in repository context.
var techIndicators = []struct {
	tech       string
	indicators []string
}{
	{"AI", []string{"ai", "artificial intelligence", "machine learning", "ml", "gpt", "llm"}},
	{"Python", []string{"python", ".py", "django", "flask", "fastapi"}},
	{"JavaScript", []string{"javascript", ".js", "react", "vue", "angular", "node"}},
	{"TypeScript", []string{"typescript", ".ts", "tsx"}},
	{"Go", []string{"golang", ".go", "go.mod"}},
	{"Blockchain", []string{"blockchain", "web3", "ethereum", "smart contract"}},
}

// fallback produces a keyword-detected classification.
func fallback(repoName, repoContext string) Analysis {
	return Analysis{
		PrimarySector: "software",
		SecondaryTech: detectTech(repoContext),
		Description:   repoName,
		FromFallback:  true,
	}
}

// detectTech scans context for technology keywords, keeping at most
// three matches in indicator order.
func detectTech(repoContext string) []string {
	lower := strings.ToLower(repoContext)

	var detected []string
	for _, entry := range techIndicators {
		for _, indicator := range entry.indicators {
			if strings.Contains(lower, indicator) {
				detected = append(detected, entry.tech)
				break
			}
		}
		if len(detected) == 3 {
			break
		}
	}
	return detected
}

// RepoDisplayName turns a repository URL into a human-readable name:
// the last path segment with separators spaced and words capitalized.
func RepoDisplayName(repoURL string) string {
	name := strings.TrimSuffix(repoURL, "/")
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
