package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudienceConfig_KnownKey(t *testing.T) {
	a := AudienceConfig("technical_team")

	assert.Equal(t, "Technical Team / Engineers", a.Label)
	assert.Contains(t, a.Focus, "architecture")
	assert.NotEmpty(t, a.MarketFocus)
	assert.NotEmpty(t, a.CompetitorAngle)
}

func TestAudienceConfig_UnknownFallsBackToGeneral(t *testing.T) {
	a := AudienceConfig("board_of_directors")

	assert.Equal(t, DefaultAudienceKey, a.Key)
	assert.Equal(t, "General Audience", a.Label)
}

func TestKnownAudience(t *testing.T) {
	assert.True(t, KnownAudience("seed_investors"))
	assert.False(t, KnownAudience("nope"))
}

func TestAudiences_OrderedAndComplete(t *testing.T) {
	all := Audiences()

	require.Len(t, all, 6)
	assert.Equal(t, "seed_investors", all[0].Key)
	assert.Equal(t, DefaultAudienceKey, all[5].Key)
	for _, a := range all {
		assert.NotEmpty(t, a.Label, a.Key)
		assert.NotEmpty(t, a.Tone, a.Key)
	}
}

func TestBuildPrompt_TailoringBlocks(t *testing.T) {
	prompt := BuildPrompt("some context", "enterprise_buyers", "https://github.com/a/b", "Market data here")

	assert.Contains(t, prompt, "Target Audience: Enterprise Buyers")
	assert.Contains(t, prompt, "enterprise readiness and compliance")
	assert.Contains(t, prompt, "Tailor content specifically for Enterprise Buyers")
	assert.Contains(t, prompt, "Market Analysis Data:\nMarket data here")
	assert.Contains(t, prompt, "CRITICAL INSTRUCTION")
	assert.Contains(t, prompt, `"speaker_notes"`)
}
