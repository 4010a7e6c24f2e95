package headless

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a scripted run
type Config struct {
	// Name labels the run in logs and artifacts
	Name string `yaml:"name" json:"name"`

	// Steps are sent in order, one user message each
	Steps []Step `yaml:"steps" json:"steps"`

	// Safety constraints
	Constraints ConstraintConfig `yaml:"constraints" json:"constraints"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// StopOnFailure ends the run at the first failed step
	StopOnFailure bool `yaml:"stop_on_failure" json:"stop_on_failure"`
}

// Step is one user message and what should come of it
type Step struct {
	Message string `yaml:"message" json:"message"`

	// ExpectTools lists tools that must be called while the step runs, in
	// any order
	ExpectTools []string `yaml:"expect_tools" json:"expect_tools,omitempty"`

	// ExpectReply must appear in the assistant reply (case-insensitive)
	ExpectReply string `yaml:"expect_reply" json:"expect_reply,omitempty"`

	// ExpectError marks steps whose reply is expected to be an error turn
	ExpectError bool `yaml:"expect_error" json:"expect_error,omitempty"`
}

// ConstraintConfig defines safety constraints for a scripted run
type ConstraintConfig struct {
	// AllowedTools holds tool name globs; empty allows every tool
	AllowedTools []string `yaml:"allowed_tools" json:"allowed_tools"`

	// DeniedTools holds tool name globs refused even when allowed
	DeniedTools []string `yaml:"denied_tools" json:"denied_tools"`

	// MaxToolCalls bounds tool executions across the run; zero is unlimited
	MaxToolCalls int `yaml:"max_tool_calls" json:"max_tool_calls"`

	// Timeout bounds the whole run
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// LoadConfig reads a script file over DefaultConfig and validates it
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range c.Steps {
		if step.Message == "" {
			return fmt.Errorf("step %d: message is required", i+1)
		}
	}

	if c.Constraints.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.Constraints.MaxToolCalls < 0 {
		return fmt.Errorf("max_tool_calls cannot be negative")
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// DefaultConfig returns a default configuration suitable for most scripts
func DefaultConfig() *Config {
	return &Config{
		Name: "scripted run",
		Constraints: ConstraintConfig{
			MaxToolCalls: 50,
			Timeout:      5 * time.Minute,
		},
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".cobrowse/artifacts",
		},
	}
}
