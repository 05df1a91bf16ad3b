package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/netflix/go-env"
)

const (
	userConfigName    = ".read_me_later.json"
	rateLimitFileName = ".read_me_later_rate_limit.json"
	statsDirName      = ".read_me_later"
	statsFileName     = "stats.db"

	// DefaultContainerConfigPath is where container images mount the credentials file.
	DefaultContainerConfigPath = "/app/.read_me_later.json"
	// DefaultUserAgent identifies the client on outbound webhook requests.
	DefaultUserAgent = "read_me_later/1.0"
)

// Config holds runtime settings for a single invocation
type Config struct {
	// Compiled-in fallback webhook, empty unless overridden
	DefaultWebhook string `env:"READ_ME_LATER_DEFAULT_WEBHOOK"`

	// Credential discovery paths
	UserConfigPath      string `env:"READ_ME_LATER_USER_CONFIG"`
	ContainerConfigPath string `env:"READ_ME_LATER_CONTAINER_CONFIG,default=/app/.read_me_later.json"`

	// Sliding window rate limit
	RateLimitFile   string        `env:"READ_ME_LATER_RATE_LIMIT_FILE"`
	RateLimitMax    int           `env:"READ_ME_LATER_RATE_LIMIT_MAX,default=10"`
	RateLimitWindow time.Duration `env:"READ_ME_LATER_RATE_LIMIT_WINDOW,default=60s"`

	// Outbound request
	SendTimeout time.Duration `env:"READ_ME_LATER_SEND_TIMEOUT,default=10s"`
	UserAgent   string        `env:"READ_ME_LATER_USER_AGENT,default=read_me_later/1.0"`

	// Local outcome counters
	StatsEnabled bool   `env:"READ_ME_LATER_STATS_ENABLED,default=true"`
	StatsPath    string `env:"READ_ME_LATER_STATS_PATH"`
}

// Default returns a Config with built-in defaults and home-relative paths resolved.
func Default() (*Config, error) {
	cfg := &Config{
		ContainerConfigPath: DefaultContainerConfigPath,
		RateLimitMax:        10,
		RateLimitWindow:     60 * time.Second,
		SendTimeout:         10 * time.Second,
		UserAgent:           DefaultUserAgent,
		StatsEnabled:        true,
	}
	if err := resolvePaths(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := resolvePaths(&cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// resolvePaths fills empty paths with their home-relative defaults and expands a leading ~
func resolvePaths(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	if cfg.UserConfigPath == "" {
		cfg.UserConfigPath = filepath.Join(homeDir, userConfigName)
	}
	if cfg.RateLimitFile == "" {
		cfg.RateLimitFile = filepath.Join(homeDir, rateLimitFileName)
	}
	if cfg.StatsPath == "" {
		cfg.StatsPath = filepath.Join(homeDir, statsDirName, statsFileName)
	}

	cfg.UserConfigPath = expandHome(cfg.UserConfigPath, homeDir)
	cfg.ContainerConfigPath = expandHome(cfg.ContainerConfigPath, homeDir)
	cfg.RateLimitFile = expandHome(cfg.RateLimitFile, homeDir)
	cfg.StatsPath = expandHome(cfg.StatsPath, homeDir)
	return nil
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// validateConfig rejects values the limiter and sender cannot work with
func validateConfig(cfg *Config) error {
	if cfg.RateLimitMax < 1 {
		return fmt.Errorf("READ_ME_LATER_RATE_LIMIT_MAX must be at least 1")
	}
	if cfg.RateLimitWindow <= 0 {
		return fmt.Errorf("READ_ME_LATER_RATE_LIMIT_WINDOW must be greater than 0")
	}
	if cfg.SendTimeout <= 0 {
		return fmt.Errorf("READ_ME_LATER_SEND_TIMEOUT must be greater than 0")
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return nil
}
