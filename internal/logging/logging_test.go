package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.Info("records selected", "count", 3)
	l.Debug("hidden")

	assert.Contains(t, buf.String(), "records selected")
	assert.Contains(t, buf.String(), "count=3")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Empty(t, l.Path())
}

func TestNew_FileGetsDebug(t *testing.T) {
	var buf bytes.Buffer
	dir := filepath.Join(t.TempDir(), "logs")
	now := func() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC) }

	l, err := New(Options{Console: &buf, Dir: dir, Now: now})
	require.NoError(t, err)

	l.With("run_id", "r1").Debug("processing record", "id", 7)
	l.Info("run finished")
	assert.Equal(t, filepath.Join(dir, "rhdcoder_20261017_080000.log"), l.Path())
	require.NoError(t, l.Close())

	b, err := os.ReadFile(filepath.Join(dir, "rhdcoder_20261017_080000.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "processing record")
	assert.Contains(t, string(b), "run_id=r1")
	assert.Contains(t, string(b), "run finished")

	assert.NotContains(t, buf.String(), "processing record")
	assert.Contains(t, buf.String(), "run finished")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf, Level: "error", Verbose: true})
	require.NoError(t, err)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestClose_Twice(t *testing.T) {
	l, err := New(Options{Console: &bytes.Buffer{}, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
