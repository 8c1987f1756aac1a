package deck

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// GenerateScript renders a presenter script for a deck: per slide, the
// on-screen bullets followed by what the presenter should say.
func GenerateScript(d Deck) string {
	title := d.Title
	if title == "" {
		title = "Pitch Deck"
	}

	parts := []string{
		fmt.Sprintf("# Presentation Script: %s", title),
		"",
		"---",
		"",
	}

	for i, slide := range d.Slides {
		slideTitle := slide.Title
		if slideTitle == "" {
			slideTitle = fmt.Sprintf("Slide %d", i+1)
		}

		bullets := make([]string, 0, len(slide.Content))
		for _, item := range slide.Content {
			bullets = append(bullets, "- "+item)
		}

		parts = append(parts,
			fmt.Sprintf("## Slide %d: %s", i+1, slideTitle),
			"",
			"**On Screen:**",
			strings.Join(bullets, "\n"),
			"",
			"**What to Say:**",
			strings.Join(slide.SpeakerNotes, "\n"),
			"",
			"---",
			"",
		)
	}

	return strings.Join(parts, "\n")
}

// RenderMarkdown renders a deck as a markdown document, one section per
// slide with speaker notes quoted below the bullets.
func RenderMarkdown(d Deck) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", d.Title)

	for i, slide := range d.Slides {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, slide.Title)
		for _, item := range slide.Content {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		if len(slide.SpeakerNotes) > 0 {
			b.WriteString("\n")
			for _, note := range slide.SpeakerNotes {
				fmt.Fprintf(&b, "> %s\n", note)
			}
		}
	}

	return b.String()
}

// RenderJSON renders a deck as indented JSON.
func RenderJSON(d Deck) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, deckerrors.Wrap(deckerrors.ErrCodeInternal, err)
	}
	return data, nil
}

// Artifacts are the files written for one generated deck.
type Artifacts struct {
	MarkdownPath string `json:"markdown_path"`
	JSONPath     string `json:"json_path"`
	ScriptPath   string `json:"script_path"`
}

// WriteFiles writes the deck's markdown, JSON, and presenter script
// into dir. File names carry the repository hash and audience key so
// decks for different repositories and audiences never collide.
func WriteFiles(d Deck, dir, repoHash, audienceKey string) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	base := fmt.Sprintf("pitch_deck_%s_%s", repoHash, audienceKey)
	out := Artifacts{
		MarkdownPath: filepath.Join(dir, base+".md"),
		JSONPath:     filepath.Join(dir, base+".json"),
		ScriptPath:   filepath.Join(dir, fmt.Sprintf("script_%s_%s.txt", repoHash, audienceKey)),
	}

	if err := os.WriteFile(out.MarkdownPath, []byte(RenderMarkdown(d)), 0o644); err != nil {
		return Artifacts{}, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	data, err := RenderJSON(d)
	if err != nil {
		return Artifacts{}, err
	}
	if err := os.WriteFile(out.JSONPath, data, 0o644); err != nil {
		return Artifacts{}, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	if err := os.WriteFile(out.ScriptPath, []byte(GenerateScript(d)), 0o644); err != nil {
		return Artifacts{}, deckerrors.Wrap(deckerrors.ErrCodeStoreFailed, err)
	}

	return out, nil
}
