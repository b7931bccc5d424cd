package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
render:
  brand_mark: ACME
  crf: 18
trends:
  subreddits: [sneakers]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ACME", cfg.Render.BrandMark)
	assert.Equal(t, 18, cfg.Render.CRF)
	assert.Equal(t, []string{"sneakers"}, cfg.Trends.Subreddits)
	// Untouched sections keep their defaults.
	assert.Equal(t, 12, cfg.Timeline.MaxImages)
	assert.Equal(t, 30, cfg.Publish.MaxPolls)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3*time.Minute, cfg.Render.PrimaryTimeout())
	assert.Equal(t, 2*time.Minute, cfg.Render.FallbackTimeout())
	assert.Equal(t, 10*time.Second, cfg.Publish.PollInterval())
}

func TestLoadCredentialsDefaults(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty,
	// for the struct defaults to apply.
	t.Setenv("OLLAMA_HOST", "x")
	t.Setenv("LOG_LEVEL", "x")
	os.Unsetenv("OLLAMA_HOST")
	os.Unsetenv("LOG_LEVEL")

	creds, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", creds.OllamaHost)
	assert.Equal(t, "info", creds.LogLevel)
}
