package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Header("Pitch Deck")
	p.Successf("deck written to %s", "out.md")
	p.Warnf("no GitHub token")
	p.Errorf("repo unreachable")
	p.Stepf("indexing")
	p.KeyValue("Sector", "education")

	out := buf.String()
	assert.Contains(t, out, "Pitch Deck\n")
	assert.Contains(t, out, "✓ deck written to out.md")
	assert.Contains(t, out, "! no GitHub token")
	assert.Contains(t, out, "✗ repo unreachable")
	assert.Contains(t, out, "→ indexing")
	assert.Contains(t, out, "Sector:")
	assert.Contains(t, out, "education")
}

func TestIsTTY_NonFileWriter(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestNewPrinter_BufferGetsPlainStyles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Successf("done")

	// no ANSI escapes when the writer is not a terminal
	assert.NotContains(t, buf.String(), "\x1b[")
}
