package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("API URL and session file", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_API_URL", "https://staging.futureproof.example")
		t.Setenv("FUTUREPROOF_SESSION_FILE", "/tmp/fp-session.json")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://staging.futureproof.example", cfg.API.BaseURL)
		assert.Equal(t, "/tmp/fp-session.json", cfg.Session.File)
	})

	t.Run("log level is lower-cased", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_LOG_LEVEL", "DEBUG")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("debug flag", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_DEBUG", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("unparsable booleans are ignored", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_DEBUG", "kinda")
		t.Setenv("FUTUREPROOF_DARK_MODE", "sometimes")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
		assert.Equal(t, "auto", cfg.UI.Theme)
	})

	t.Run("dark mode forces theme", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_DARK_MODE", "0")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "light", cfg.UI.Theme)
	})

	t.Run("JWT secret", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_JWT_SECRET", "s3cret")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "s3cret", cfg.MockAPI.JWTSecret)
	})

	t.Run("empty values leave config alone", func(t *testing.T) {
		t.Setenv("FUTUREPROOF_API_URL", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)
	})
}
