package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"storyforge/internal/util"
	"storyforge/pkg/ai"
)

// ConfigPath is the default config file, relative to the working directory.
const ConfigPath = "config.yaml"

// DotEnvPath is loaded into the environment before overrides are applied.
const DotEnvPath = ".env"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Host                   string   `yaml:"host"`
	Port                   string   `yaml:"port"`
	LogLevel               string   `yaml:"logLevel"`
	GeminiAPIKey           string   `yaml:"geminiAPIKey"`
	GeminiEndpoint         string   `yaml:"geminiEndpoint"`
	UpstreamTimeoutSeconds int      `yaml:"upstreamTimeoutSeconds"`
	RelayUpstreamStatus    bool     `yaml:"relayUpstreamStatus"`
	CORSAllowedOrigins     []string `yaml:"corsAllowedOrigins"`
	TrustedProxies         []string `yaml:"trustedProxies"`
	ShutdownTimeoutSeconds int      `yaml:"shutdownTimeoutSeconds"`
}

func defaults() FileConfig {
	return FileConfig{
		Host:                   "0.0.0.0",
		Port:                   "8000",
		LogLevel:               "info",
		GeminiEndpoint:         ai.DefaultGeminiEndpoint,
		UpstreamTimeoutSeconds: 120,
		CORSAllowedOrigins:     []string{"*"},
		ShutdownTimeoutSeconds: 10,
	}
}

// Load reads config from path (defaults to config.yaml). A missing file is not
// an error: defaults and environment variables are enough to run.
func Load(path string) (FileConfig, error) {
	cfg := defaults()
	if path == "" {
		path = ConfigPath
	}
	if err := loadDotEnv(DotEnvPath); err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Override with environment variables
func applyEnv(cfg *FileConfig) error {
	if v := os.Getenv("STORY_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("STORY_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_URL"); v != "" {
		cfg.GeminiEndpoint = v
	}
	if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: GEMINI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.UpstreamTimeoutSeconds = n
	}
	if v := os.Getenv("STORY_RELAY_UPSTREAM_STATUS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: STORY_RELAY_UPSTREAM_STATUS: %w", err)
		}
		cfg.RelayUpstreamStatus = b
	}
	if v := os.Getenv("STORY_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("STORY_TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitList(v)
	}
	if v := os.Getenv("STORY_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: STORY_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.ShutdownTimeoutSeconds = n
	}
	return nil
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return errors.New("config: geminiAPIKey is required (set in config.yaml or GEMINI_API_KEY)")
	}
	u, err := url.Parse(cfg.GeminiEndpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: geminiEndpoint must be an absolute http(s) URL, got %q", cfg.GeminiEndpoint)
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("config: port must be a number between 0 and 65535, got %q", cfg.Port)
	}
	if cfg.UpstreamTimeoutSeconds < 0 {
		return errors.New("config: upstreamTimeoutSeconds must be >= 0")
	}
	if cfg.ShutdownTimeoutSeconds < 0 {
		return errors.New("config: shutdownTimeoutSeconds must be >= 0")
	}
	if _, err := util.NewTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("config: trustedProxies: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c FileConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// UpstreamTimeout bounds each call to the provider; zero disables the bound.
func (c FileConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// ShutdownTimeout is the grace period for in-flight requests on exit.
func (c FileConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
