package deck

import (
	"context"
	"strings"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/llm"
	"github.com/deckforge/deckforge/internal/market"
)

// Slide is one deck slide. Content and speaker notes arrive from the
// model as either strings or lists and are normalized to lists at the
// parse boundary.
type Slide struct {
	Title        string           `json:"title"`
	Content      llm.StringOrList `json:"content"`
	SpeakerNotes llm.StringOrList `json:"speaker_notes"`
}

// Deck is a drafted pitch deck.
type Deck struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Completer is the inference capability the generator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Generator drafts decks with a model.
type Generator struct {
	client Completer
}

// NewGenerator creates a deck generator.
func NewGenerator(client Completer) *Generator {
	return &Generator{client: client}
}

// Generate drafts a deck for an audience from repository context and
// market analysis. Malformed model output is a reportable failure, not
// a silent empty deck.
func (g *Generator) Generate(ctx context.Context, repoContext, audienceKey, repoURL string, analysis market.Analysis) (Deck, error) {
	prompt := BuildPrompt(repoContext, audienceKey, repoURL, analysis.FormatForPrompt())

	output, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return Deck{}, err
	}

	var d Deck
	if err := llm.DecodeJSON(output, &d); err != nil {
		return Deck{}, err
	}
	if len(d.Slides) == 0 {
		return Deck{}, deckerrors.MalformedPayload("deck draft contains no slides", nil)
	}
	if d.Title == "" {
		d.Title = "Project Pitch Deck"
	}

	ApplyMarketAnalysis(&d, analysis)
	return d, nil
}

// ApplyMarketAnalysis backfills the market slide from the analysis.
// A drafted market slide with content is left alone; an empty or
// missing one is filled from the searched figures so the deck never
// ships a blank market section.
func ApplyMarketAnalysis(d *Deck, analysis market.Analysis) {
	for i := range d.Slides {
		if !isMarketSlide(d.Slides[i].Title) {
			continue
		}
		if len(d.Slides[i].Content) == 0 {
			d.Slides[i].Content = strings.Split(analysis.FormatForSlide(), "\n")
		}
		if len(d.Slides[i].SpeakerNotes) == 0 {
			d.Slides[i].SpeakerNotes = strings.Split(analysis.FormatSpeakerNotes(), "\n\n")
		}
		return
	}

	d.Slides = append(d.Slides, Slide{
		Title:        "Market Analysis",
		Content:      strings.Split(analysis.FormatForSlide(), "\n"),
		SpeakerNotes: strings.Split(analysis.FormatSpeakerNotes(), "\n\n"),
	})
}

func isMarketSlide(title string) bool {
	return strings.Contains(strings.ToLower(title), "market")
}
