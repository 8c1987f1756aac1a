package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSONToFile(t *testing.T) {
	// Given: a config pointing at a temp log file
	dir := t.TempDir()
	path := filepath.Join(dir, "deckforge.log")
	cfg := Config{Level: "debug", FilePath: path, MaxSizeMB: 1, MaxFiles: 2}

	// When: I set up logging and emit a record
	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	logger.Info("index_complete", slog.Int("chunks", 42))
	cleanup()

	// Then: the file contains the structured record
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"index_complete"`)
	assert.Contains(t, string(data), `"chunks":42`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	// Given: a writer with a 1MB limit
	dir := t.TempDir()
	path := filepath.Join(dir, "deckforge.log")
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// When: I write past the limit
	line := []byte(strings.Repeat("x", 64*1024) + "\n")
	for i := 0; i < 20; i++ {
		_, err := w.Write(line)
		require.NoError(t, err)
	}

	// Then: a rotated file exists alongside the active one
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected rotated file after exceeding max size")
}
