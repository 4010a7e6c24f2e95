package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeClient, cfg.Mode)
	assert.Equal(t, 3, cfg.MaxFollowUps)
	assert.Equal(t, time.Second, cfg.MinCallGap)
	assert.Equal(t, 4000, cfg.History.MaxTokens)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cobrowse.yaml", `
mode: server
stateful: true
provider: anthropic
model: claude-3-5-haiku-latest
max_follow_ups: 2
min_call_gap: 500ms
navigation:
  allowed: ["/", "/projects/**"]
history:
  max_tokens: 1200
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeServer, cfg.Mode)
	assert.True(t, cfg.Stateful)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, 2, cfg.MaxFollowUps)
	assert.Equal(t, 500*time.Millisecond, cfg.MinCallGap)
	assert.Equal(t, []string{"/", "/projects/**"}, cfg.Navigation.Allowed)
	assert.Equal(t, 1200, cfg.History.MaxTokens)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields keep their defaults.
	assert.Equal(t, ":3000", cfg.ListenAddr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COBROWSE_MODE", "server")
	t.Setenv("COBROWSE_MAX_FOLLOW_UPS", "1")
	t.Setenv("COBROWSE_MIN_CALL_GAP", "2s")
	t.Setenv("COBROWSE_STATEFUL", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 1, cfg.MaxFollowUps)
	assert.Equal(t, 2*time.Second, cfg.MinCallGap)
	assert.True(t, cfg.Stateful)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml")},
		{name: "bad yaml", path: writeFile(t, dir, "bad.yaml", "mode: [")},
		{name: "bad follow ups env", env: map[string]string{"COBROWSE_MAX_FOLLOW_UPS": "many"}},
		{name: "bad gap env", env: map[string]string{"COBROWSE_MIN_CALL_GAP": "soon"}},
		{name: "bad stateful env", env: map[string]string{"COBROWSE_STATEFUL": "maybe"}},
		{name: "invalid after overrides", env: map[string]string{"COBROWSE_MODE": "hybrid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "default", modify: func(*Config) {}},
		{name: "bad mode", modify: func(c *Config) { c.Mode = "hybrid" }, wantErr: "invalid mode"},
		{name: "bad provider", modify: func(c *Config) { c.Provider = "gemini" }, wantErr: "invalid provider"},
		{name: "remote in client mode", modify: func(c *Config) { c.Provider = ProviderRemote }, wantErr: "requires server mode"},
		{name: "remote without url", modify: func(c *Config) {
			c.Mode = ModeServer
			c.Provider = ProviderRemote
			c.RemoteURL = ""
		}, wantErr: "remote_url is required"},
		{name: "remote in server mode", modify: func(c *Config) {
			c.Mode = ModeServer
			c.Provider = ProviderRemote
		}},
		{name: "negative follow ups", modify: func(c *Config) { c.MaxFollowUps = -1 }, wantErr: "max_follow_ups"},
		{name: "zero follow ups", modify: func(c *Config) { c.MaxFollowUps = 0 }},
		{name: "negative gap", modify: func(c *Config) { c.MinCallGap = -time.Second }, wantErr: "min_call_gap"},
		{name: "negative budget", modify: func(c *Config) { c.History.MaxTokens = -5 }, wantErr: "history.max_tokens"},
		{name: "bad level", modify: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid logging level"},
		{name: "empty level defaults", modify: func(c *Config) { c.Logging.Level = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := DefaultConfig()
	_, err := cfg.APIKey()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Equal(t, "LLM API key not configured. Please add OPENAI_API_KEY to .env.local", err.Error())

	t.Setenv("OPENAI_API_KEY", "sk-test")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	cfg.Provider = ProviderAnthropic
	_, err = cfg.APIKey()
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	cfg.APIKeyEnv = "MY_KEY"
	t.Setenv("MY_KEY", "custom")
	key, err = cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "custom", key)

	cfg.Provider = ProviderRemote
	key, err = cfg.APIKey()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, ".env.local", "COBROWSE_TEST_KEY=local\n")
	fallback := writeFile(t, dir, ".env", "COBROWSE_TEST_KEY=fallback\nCOBROWSE_TEST_OTHER=other\n")

	t.Setenv("COBROWSE_TEST_KEY", "")
	t.Setenv("COBROWSE_TEST_OTHER", "")
	os.Unsetenv("COBROWSE_TEST_KEY")
	os.Unsetenv("COBROWSE_TEST_OTHER")

	require.NoError(t, LoadEnvFiles(local, fallback, filepath.Join(dir, "missing")))
	assert.Equal(t, "local", os.Getenv("COBROWSE_TEST_KEY"))
	assert.Equal(t, "other", os.Getenv("COBROWSE_TEST_OTHER"))
}

func TestLoadEnvFilesKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "COBROWSE_TEST_SET=file\n")
	t.Setenv("COBROWSE_TEST_SET", "process")

	require.NoError(t, LoadEnvFiles(path))
	assert.Equal(t, "process", os.Getenv("COBROWSE_TEST_SET"))
}

func TestLoadEnvFilesNoneExist(t *testing.T) {
	assert.NoError(t, LoadEnvFiles(filepath.Join(t.TempDir(), "absent")))
}
