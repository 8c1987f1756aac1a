package sector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	output string
	err    error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.output, f.err
}

func (f *fakeCompleter) Model() string { return "fake" }

func TestAnalyze_ParsesModelOutput(t *testing.T) {
	a := New(&fakeCompleter{output: "```json\n" + `{
		"primary_sector": "education",
		"secondary_tech": ["AI", "Python"],
		"description": "Tutoring platform",
		"key_features": ["flashcards", "spaced repetition"]
	}` + "\n```"})

	got := a.Analyze(context.Background(), "Tutor App", "context")

	assert.Equal(t, "education", got.PrimarySector)
	assert.Equal(t, []string{"AI", "Python"}, got.SecondaryTech)
	assert.Equal(t, "Tutoring platform", got.Description)
	assert.False(t, got.FromFallback)
}

func TestAnalyze_StringTechListIsNormalized(t *testing.T) {
	a := New(&fakeCompleter{output: `{"primary_sector": "finance", "secondary_tech": "Go\nReact", "description": "d"}`})

	got := a.Analyze(context.Background(), "Pay App", "context")

	assert.Equal(t, []string{"Go", "React"}, got.SecondaryTech)
}

func TestAnalyze_ModelFailureFallsBackToKeywords(t *testing.T) {
	a := New(&fakeCompleter{err: errors.New("boom")})

	got := a.Analyze(context.Background(), "Widget",
		"a fastapi service with react frontend and gpt integration")

	assert.True(t, got.FromFallback)
	assert.Equal(t, "software", got.PrimarySector)
	assert.Equal(t, "Widget", got.Description)
	assert.Contains(t, got.SecondaryTech, "AI")
	assert.Contains(t, got.SecondaryTech, "Python")
	assert.LessOrEqual(t, len(got.SecondaryTech), 3)
}

func TestAnalyze_UnparseableOutputFallsBack(t *testing.T) {
	a := New(&fakeCompleter{output: "I cannot classify this repository."})

	got := a.Analyze(context.Background(), "Widget", "plain text")

	assert.True(t, got.FromFallback)
}

func TestAnalyze_MissingFieldsGetDefaults(t *testing.T) {
	a := New(&fakeCompleter{output: `{"secondary_tech": []}`})

	got := a.Analyze(context.Background(), "Widget", "ctx")

	assert.Equal(t, "software", got.PrimarySector)
	assert.Equal(t, "Widget", got.Description)
}

func TestRepoDisplayName(t *testing.T) {
	assert.Equal(t, "My Widget App", RepoDisplayName("https://github.com/acme/my-widget_app"))
	assert.Equal(t, "Widget", RepoDisplayName("https://github.com/acme/widget.git"))
	assert.Equal(t, "Widget", RepoDisplayName("https://github.com/acme/widget/"))
}
