package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/pkg/ai"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORY_HOST", "STORY_PORT", "LOG_LEVEL", "GEMINI_API_KEY", "GEMINI_API_URL",
		"GEMINI_TIMEOUT_SECONDS", "STORY_RELAY_UPSTREAM_STATUS", "STORY_CORS_ALLOWED_ORIGINS",
		"STORY_TRUSTED_PROXIES", "STORY_SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func validConfig() FileConfig {
	cfg := defaults()
	cfg.GeminiAPIKey = "k"
	return cfg
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
host: "127.0.0.1"
port: "9000"
logLevel: "debug"
geminiAPIKey: "from-file"
geminiEndpoint: "https://example.test/v1beta/models/m:generateContent"
upstreamTimeoutSeconds: 30
relayUpstreamStatus: true
corsAllowedOrigins: ["https://a.example"]
trustedProxies: ["10.0.0.0/8"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, "https://example.test/v1beta/models/m:generateContent", cfg.GeminiEndpoint)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout())
	assert.True(t, cfg.RelayUpstreamStatus)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, ai.DefaultGeminiEndpoint, cfg.GeminiEndpoint)
	assert.Equal(t, 120*time.Second, cfg.UpstreamTimeout())
	assert.False(t, cfg.RelayUpstreamStatus)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORY_HOST", "::1")
	t.Setenv("STORY_PORT", "8081")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINI_API_URL", "http://localhost:9999/generate")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "0")
	t.Setenv("STORY_RELAY_UPSTREAM_STATUS", "true")
	t.Setenv("STORY_CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("STORY_TRUSTED_PROXIES", "192.168.0.1")
	t.Setenv("STORY_SHUTDOWN_TIMEOUT_SECONDS", "3")

	path := writeConfig(t, `geminiAPIKey: "file-key"`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "[::1]:8081", cfg.Addr())
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
	assert.Equal(t, "http://localhost:9999/generate", cfg.GeminiEndpoint)
	assert.Zero(t, cfg.UpstreamTimeout())
	assert.True(t, cfg.RelayUpstreamStatus)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"192.168.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout())
}

func TestLoadRejectsBadEnvNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "GEMINI_TIMEOUT_SECONDS")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "port: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STORY_TEST_DOTENV=loaded\n"), 0o644))
	t.Setenv("STORY_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("STORY_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(envPath))
	assert.Equal(t, "loaded", os.Getenv("STORY_TEST_DOTENV"))
	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestValidateConfig(t *testing.T) {
	cases := map[string]func(*FileConfig){
		"missing api key":   func(c *FileConfig) { c.GeminiAPIKey = " " },
		"relative endpoint": func(c *FileConfig) { c.GeminiEndpoint = "/v1beta/models" },
		"ftp endpoint":      func(c *FileConfig) { c.GeminiEndpoint = "ftp://example.test/x" },
		"non-numeric port":  func(c *FileConfig) { c.Port = "http" },
		"port out of range": func(c *FileConfig) { c.Port = "70000" },
		"negative timeout":  func(c *FileConfig) { c.UpstreamTimeoutSeconds = -1 },
		"negative shutdown": func(c *FileConfig) { c.ShutdownTimeoutSeconds = -1 },
		"bad proxy":         func(c *FileConfig) { c.TrustedProxies = []string{"not-an-ip"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	assert.NoError(t, validateConfig(validConfig()))
}
