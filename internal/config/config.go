// Package config loads the service configuration from the environment.
// All pipeline entry points receive their settings by injection; nothing in
// this repository reads credentials at call time.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default tunables for upload admission and text extraction. The observed
// sensible bounds vary per deployment, so every one of these can be
// overridden via environment variables.
const (
	// DefaultMinUploadBytes rejects near-empty files that are almost
	// certainly blank scans.
	DefaultMinUploadBytes = 100

	// DefaultMaxUploadBytes caps OCR/LLM cost and latency per upload.
	DefaultMaxUploadBytes = 8 << 20 // 8 MiB

	// DefaultMinEmbeddedTextChars is the threshold below which embedded PDF
	// text is treated as "no real text" and the document is sent to OCR.
	DefaultMinEmbeddedTextChars = 15

	// DefaultGeminiModel is the model used for all LLM extraction calls.
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Config holds all runtime configuration for the service.
type Config struct {
	// Port is the HTTP listen port for cmd/api.
	Port string

	// GeminiAPIKey authenticates the LLM collaborator. Required for any
	// extraction that reaches the LLM fallback.
	GeminiAPIKey string

	// GeminiModel is the generation model name.
	GeminiModel string

	// GCPProjectID is the project used for Firestore.
	GCPProjectID string

	// ReceiptBucket is the GCS bucket for archiving uploaded originals.
	// Archival is disabled when empty.
	ReceiptBucket string

	// MinUploadBytes / MaxUploadBytes bound accepted upload sizes.
	MinUploadBytes int64
	MaxUploadBytes int64

	// MinEmbeddedTextChars is the short-text threshold for the embedded-PDF
	// to OCR fallback.
	MinEmbeddedTextChars int
}

// Load reads configuration from the environment, honouring a .env file when
// one is present in the working directory.
func Load() (*Config, error) {
	// Best effort; a missing .env just means plain env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 envOr("PORT", "8080"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          envOr("GEMINI_MODEL", DefaultGeminiModel),
		GCPProjectID:         os.Getenv("GCP_PROJECT_ID"),
		ReceiptBucket:        os.Getenv("RECEIPT_BUCKET"),
		MinUploadBytes:       envInt64Or("MIN_UPLOAD_BYTES", DefaultMinUploadBytes),
		MaxUploadBytes:       envInt64Or("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		MinEmbeddedTextChars: int(envInt64Or("MIN_EMBEDDED_TEXT_CHARS", DefaultMinEmbeddedTextChars)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency. Missing collaborator credentials are
// a startup failure, not a pipeline concern.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config: GEMINI_API_KEY is required")
	}
	if c.MinUploadBytes < 0 || c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: upload size bounds must be positive")
	}
	if c.MinUploadBytes >= c.MaxUploadBytes {
		return fmt.Errorf("config: MIN_UPLOAD_BYTES (%d) must be below MAX_UPLOAD_BYTES (%d)",
			c.MinUploadBytes, c.MaxUploadBytes)
	}
	if c.MinEmbeddedTextChars < 0 {
		return fmt.Errorf("config: MIN_EMBEDDED_TEXT_CHARS must not be negative")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
