package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"futureproof/internal/api"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all FutureProof client configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Redirect RedirectConfig `yaml:"redirect"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
	MockAPI  MockAPIConfig  `yaml:"mock_api"`
}

// APIConfig configures the backend the client talks to.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   string        `yaml:"timeout"`
	Endpoints api.Endpoints `yaml:"endpoints"`
}

// RedirectConfig holds the pauses between a success message and the next screen.
type RedirectConfig struct {
	AuthDelay   string `yaml:"auth_delay"`
	SubmitDelay string `yaml:"submit_delay"`
}

// SessionConfig configures where the signed-in session is persisted.
type SessionConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	DebugMode  bool            `yaml:"debug_mode"`
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// IsCategoryEnabled reports whether a category writes to the log file.
// Nothing is written unless debug_mode is on; unlisted categories default to on.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, ok := c.Categories[category]
	return !ok || enabled
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, dark, light
}

// MockAPIConfig configures the local development backend.
type MockAPIConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
	DB        string `yaml:"db,omitempty"` // SQLite file; empty keeps accounts in memory
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   api.DefaultBaseURL,
			Timeout:   "30s",
			Endpoints: api.DefaultEndpoints(),
		},
		Redirect: RedirectConfig{
			AuthDelay:   "1500ms",
			SubmitDelay: "2s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		MockAPI: MockAPIConfig{
			Addr:      ":5000",
			JWTSecret: "dev-secret-change-me",
			TokenTTL:  "24h",
		},
	}
}

// DefaultPath returns the workspace config if one exists, else the one in
// the user's home directory.
func DefaultPath() string {
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ".futureproof", "config.yaml")
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".futureproof", "config.yaml")
	}
	return filepath.Join(home, ".futureproof", "config.yaml")
}

// Load loads configuration from a YAML file. A .env file in the working
// directory is read first so its values feed the environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FUTUREPROOF_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("FUTUREPROOF_SESSION_FILE"); v != "" {
		c.Session.File = v
	}
	if v := os.Getenv("FUTUREPROOF_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("FUTUREPROOF_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("FUTUREPROOF_DARK_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				c.UI.Theme = "dark"
			} else {
				c.UI.Theme = "light"
			}
		}
	}
	if v := os.Getenv("FUTUREPROOF_JWT_SECRET"); v != "" {
		c.MockAPI.JWTSecret = v
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// GetAPITimeout returns the per-request timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	return parseDuration(c.API.Timeout, api.DefaultTimeout)
}

// GetAuthRedirect returns the pause after a login or registration succeeds.
func (c *Config) GetAuthRedirect() time.Duration {
	return parseDuration(c.Redirect.AuthDelay, 1500*time.Millisecond)
}

// GetSubmitRedirect returns the pause after the questionnaire is accepted.
func (c *Config) GetSubmitRedirect() time.Duration {
	return parseDuration(c.Redirect.SubmitDelay, 2*time.Second)
}

// GetTokenTTL returns the lifetime of tokens issued by the mock API.
func (c *Config) GetTokenTTL() time.Duration {
	return parseDuration(c.MockAPI.TokenTTL, 24*time.Hour)
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidThemes lists the accepted UI themes.
var ValidThemes = []string{"auto", "dark", "light"}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q (want http(s)://host[:port])", c.API.BaseURL)
	}
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	for name, path := range map[string]string{
		"login":             c.API.Endpoints.Login,
		"signup":            c.API.Endpoints.Signup,
		"me":                c.API.Endpoints.Me,
		"onboarding_submit": c.API.Endpoints.OnboardingSubmit,
	} {
		if path != "" && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("endpoint %s must start with '/': %q", name, path)
		}
	}
	return nil
}

// DarkMode resolves the theme setting. "auto" defers to the terminal.
func (c *Config) DarkMode(terminalDark bool) bool {
	switch c.UI.Theme {
	case "dark":
		return true
	case "light":
		return false
	default:
		return terminalDark
	}
}
