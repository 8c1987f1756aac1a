package deck

import "fmt"

// accuracyNote keeps the model grounded on the retrieved repository
// content instead of inventing a stack.
const accuracyNote = `
CRITICAL INSTRUCTION: Use ONLY information from the repository context provided above.
- Do NOT make up or assume technologies, features, or details
- If the repository uses specific libraries, mention those exact libraries
- Base ALL content on the actual code, commits, and documentation provided`

// BuildPrompt assembles the deck drafting prompt from repository
// context, the audience profile, and formatted market analysis data.
func BuildPrompt(repoContext, audienceKey, repoURL, marketContent string) string {
	audience := AudienceConfig(audienceKey)

	return fmt.Sprintf(`You are an expert pitch deck creator and marketing strategist.

CRITICAL: Tailor this pitch deck specifically for the target audience!

Target Audience: %s
Primary Focus: %s
Tone: %s
Market Analysis Focus: %s
Competitive Positioning: %s

Repository: %s

AUDIENCE-SPECIFIC REQUIREMENTS:
%s

Based on the following repository context, create a comprehensive pitch deck structure:

%s

Generate a pitch deck with the following sections. Return ONLY valid JSON with this exact structure:

{
  "title": "Project name or tagline",
  "slides": [
    {
      "title": "Cover",
      "content": ["Project name", "One-line description", "Key value proposition"],
      "speaker_notes": "Opening remarks for presenter"
    },
    {
      "title": "Problem",
      "content": ["First key problem or pain point", "Second problem or challenge", "Third problem or market gap", "Why this matters now"],
      "speaker_notes": "How to present the problem compellingly"
    },
    {
      "title": "Solution",
      "content": ["Core solution approach", "How it addresses the problem", "Unique value proposition", "Key differentiator"],
      "speaker_notes": "Emphasize unique value proposition"
    },
    {
      "title": "Product/Features",
      "content": ["Feature 1 with brief explanation", "Feature 2 with brief explanation", "Feature 3 with brief explanation", "Additional key capability"],
      "speaker_notes": "Technical highlights and differentiators"
    },
    {
      "title": "Technology",
      "content": ["Primary tech stack component", "Architecture approach", "Scalability features", "Technical advantages"],
      "speaker_notes": "Why these technology choices matter"
    },
    {
      "title": "Market Analysis",
      "content": ["Market size and growth rate", "Key trends in the industry", "Target market segment", "Competitive positioning"],
      "speaker_notes": "Present market research and positioning strategy"
    },
    {
      "title": "Traction/Progress",
      "content": ["Recent development milestone", "Key improvements or features added", "Community or user engagement", "Development velocity"],
      "speaker_notes": "Demonstrate momentum and velocity"
    },
    {
      "title": "Roadmap",
      "content": ["Short-term goal (next 3 months)", "Medium-term goal (6-12 months)", "Long-term vision", "Key milestones"],
      "speaker_notes": "Vision for growth and expansion"
    },
    {
      "title": "Call to Action",
      "content": ["Primary ask or next step", "How audience can get involved", "Contact or follow-up information"],
      "speaker_notes": "Closing remarks and ask"
    }
  ]
}

CRITICAL REQUIREMENTS:
- Each slide MUST have AT LEAST 3 bullet points (preferably 4-5)
- Content MUST be an array of strings, NOT a single string
- Each bullet point should be informative and substantive (not just one word)
- Tailor content specifically for %[1]s
- Focus on: %[2]s
- Use %[3]s tone
- Make speaker notes detailed and actionable
- Return ONLY the JSON, no markdown formatting or extra text
%[9]s

Market Analysis Data:
%[10]s`,
		audience.Label, audience.Focus, audience.Tone,
		audience.MarketFocus, audience.CompetitorAngle,
		repoURL,
		requirementsFor(audienceKey),
		repoContext,
		accuracyNote,
		marketContent)
}
