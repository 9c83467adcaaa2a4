package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("MIN_UPLOAD_BYTES", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("MIN_EMBEDDED_TEXT_CHARS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, int64(DefaultMinUploadBytes), cfg.MinUploadBytes)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.Equal(t, DefaultMinEmbeddedTextChars, cfg.MinEmbeddedTextChars)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_UPLOAD_BYTES", "5242880")
	t.Setenv("MIN_EMBEDDED_TEXT_CHARS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(5242880), cfg.MaxUploadBytes)
	assert.Equal(t, 25, cfg.MinEmbeddedTextChars)
}

func TestValidateBounds(t *testing.T) {
	cfg := &Config{
		GeminiAPIKey:   "k",
		MinUploadBytes: 1 << 20,
		MaxUploadBytes: 100,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_UPLOAD_BYTES")
}
