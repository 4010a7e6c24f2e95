// Package config loads the assistant's configuration from a YAML file, the
// environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderRemote    = "remote"
)

// Mode names, matching agent.Mode.
const (
	ModeClient = "client"
	ModeServer = "server"
)

// EnvFiles are loaded, when present, before the environment is read.
// Earlier files win because godotenv never overrides a set variable.
var EnvFiles = []string{".env.local", ".env"}

// ErrMissingAPIKey reports that the provider's API key variable is unset.
var ErrMissingAPIKey = errors.New("LLM API key not configured")

// MissingAPIKeyError names the variable that should hold the key.
type MissingAPIKeyError struct {
	Var string
}

func (e *MissingAPIKeyError) Error() string {
	return fmt.Sprintf("LLM API key not configured. Please add %s to .env.local", e.Var)
}

// Is makes errors.Is(err, ErrMissingAPIKey) hold.
func (e *MissingAPIKeyError) Is(target error) bool {
	return target == ErrMissingAPIKey
}

// Config is the complete configuration.
type Config struct {
	// Mode selects the orchestration variant: client or server.
	Mode string `yaml:"mode" json:"mode"`

	// Stateful keeps one model conversation per session instead of
	// rebuilding it from visible turns on every message.
	Stateful bool `yaml:"stateful" json:"stateful"`

	// Provider is openai, anthropic or remote.
	Provider string `yaml:"provider" json:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model" json:"model"`

	// BaseURL points the provider at a compatible endpoint.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// APIKeyEnv names the variable holding the API key. Defaults per provider.
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`

	MaxFollowUps int           `yaml:"max_follow_ups" json:"max_follow_ups"`
	MinCallGap   time.Duration `yaml:"min_call_gap" json:"min_call_gap"`

	// ListenAddr is where the chat endpoint listens.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`

	// RemoteURL is the chat endpoint used by the remote provider.
	RemoteURL string `yaml:"remote_url" json:"remote_url"`

	// PortfolioFile optionally overrides the built-in portfolio content.
	PortfolioFile string `yaml:"portfolio_file" json:"portfolio_file"`

	ContactSection string `yaml:"contact_section" json:"contact_section"`

	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`
	History    HistoryConfig    `yaml:"history" json:"history"`
	Browser    BrowserConfig    `yaml:"browser" json:"browser"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// NavigationConfig restricts where the navigate tool may go.
type NavigationConfig struct {
	// Allowed holds path globs; "*" matches one segment, "**" any depth.
	Allowed []string `yaml:"allowed" json:"allowed"`
}

// HistoryConfig bounds the conversation sent to the model.
type HistoryConfig struct {
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`
}

// BrowserConfig configures the live page driven by playwright.
type BrowserConfig struct {
	URL      string `yaml:"url" json:"url"`
	Headless bool   `yaml:"headless" json:"headless"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" json:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeClient,
		Provider:       ProviderOpenAI,
		MaxFollowUps:   3,
		MinCallGap:     time.Second,
		ListenAddr:     ":3000",
		RemoteURL:      "http://localhost:3000/api/chat",
		ContactSection: "contact",
		Navigation: NavigationConfig{
			Allowed: []string{"/**"},
		},
		History: HistoryConfig{
			MaxTokens: 4000,
		},
		Browser: BrowserConfig{
			URL:      "http://localhost:3000",
			Headless: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies .env
// files and environment overrides, then validates. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := LoadEnvFiles(EnvFiles...); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads the files that exist. Variables already set are kept.
func LoadEnvFiles(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// applyEnv applies COBROWSE_* overrides.
func (c *Config) applyEnv() error {
	strings := map[string]*string{
		"COBROWSE_MODE":        &c.Mode,
		"COBROWSE_PROVIDER":    &c.Provider,
		"COBROWSE_MODEL":       &c.Model,
		"COBROWSE_BASE_URL":    &c.BaseURL,
		"COBROWSE_LISTEN_ADDR": &c.ListenAddr,
		"COBROWSE_REMOTE_URL":  &c.RemoteURL,
		"COBROWSE_PORTFOLIO":   &c.PortfolioFile,
		"COBROWSE_BROWSER_URL": &c.Browser.URL,
		"COBROWSE_LOG_LEVEL":   &c.Logging.Level,
	}
	for name, field := range strings {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}

	if v := os.Getenv("COBROWSE_STATEFUL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COBROWSE_STATEFUL %q: %w", v, err)
		}
		c.Stateful = b
	}
	if v := os.Getenv("COBROWSE_MAX_FOLLOW_UPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid COBROWSE_MAX_FOLLOW_UPS %q: %w", v, err)
		}
		c.MaxFollowUps = n
	}
	if v := os.Getenv("COBROWSE_MIN_CALL_GAP"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COBROWSE_MIN_CALL_GAP %q: %w", v, err)
		}
		c.MinCallGap = d
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Mode != ModeClient && c.Mode != ModeServer {
		return fmt.Errorf("invalid mode: %s (must be 'client' or 'server')", c.Mode)
	}

	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	case ProviderRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("remote_url is required for the remote provider")
		}
		if c.Mode != ModeServer {
			return fmt.Errorf("the remote provider requires server mode")
		}
	default:
		return fmt.Errorf("invalid provider: %s (must be 'openai', 'anthropic' or 'remote')", c.Provider)
	}

	if c.MaxFollowUps < 0 {
		return fmt.Errorf("max_follow_ups cannot be negative")
	}
	if c.MinCallGap < 0 {
		return fmt.Errorf("min_call_gap cannot be negative")
	}
	if c.History.MaxTokens < 0 {
		return fmt.Errorf("history.max_tokens cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	return nil
}

// KeyVar returns the environment variable holding the API key.
func (c *Config) KeyVar() string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	switch c.Provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// APIKey returns the provider's API key. The remote provider needs none.
func (c *Config) APIKey() (string, error) {
	if c.Provider == ProviderRemote {
		return "", nil
	}
	name := c.KeyVar()
	key := os.Getenv(name)
	if key == "" {
		return "", &MissingAPIKeyError{Var: name}
	}
	return key, nil
}
