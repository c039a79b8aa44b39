package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Defaults mirror the values the hosted scraper has always used.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8080
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultBaseURL        = "https://api.anthropic.com"
	DefaultModel          = "claude-sonnet-4-20250514"
	DefaultVersion        = "2023-06-01"
	DefaultBeta           = "web-fetch-2025-09-10"
	DefaultMaxTokens      = 5000
	DefaultAPIKeyEnv      = "ANTHROPIC_API_KEY"
	DefaultFetchMaxUses   = 5
	DefaultSearchMaxUses  = 3
	DefaultTimeoutSeconds = 180
)

type Config struct {
	Server struct {
		Host    string `json:"host"`
		Port    int    `json:"port"`
		Subpath string `json:"subpath"`
	} `json:"server"`
	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"` // "console" or "json"
	} `json:"log"`
	Anthropic struct {
		BaseURL   string   `json:"base_url"`
		Model     string   `json:"model"`
		Version   string   `json:"version"`
		Betas     []string `json:"betas"`
		MaxTokens int      `json:"max_tokens"`
		// APIKeyEnv names the environment variable holding the secret.
		// The key itself never lives in the config file.
		APIKeyEnv string `json:"api_key_env"`
	} `json:"anthropic"`
	Tools struct {
		FetchMaxUses  int `json:"fetch_max_uses"`
		SearchMaxUses int `json:"search_max_uses"`
	} `json:"tools"`
	Extraction struct {
		TimeoutSeconds int `json:"timeout_seconds"`
	} `json:"extraction"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton). An empty path skips
// the file and builds the config from defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		var c Config
		if path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				cfgErr = fmt.Errorf("failed to read config file: %w", err)
				return
			}
			if err := json.Unmarshal(raw, &c); err != nil {
				cfgErr = fmt.Errorf("invalid config format: %w", err)
				return
			}
		}
		c.applyDefaults()
		c.applyEnv()
		if err := c.validate(); err != nil {
			cfgErr = err
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

// APIKey reads the provider secret from the environment. It is resolved on
// every call so a rotated key is picked up without a restart.
func (c *Config) APIKey() string {
	return os.Getenv(c.Anthropic.APIKeyEnv)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Anthropic.BaseURL == "" {
		c.Anthropic.BaseURL = DefaultBaseURL
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = DefaultModel
	}
	if c.Anthropic.Version == "" {
		c.Anthropic.Version = DefaultVersion
	}
	if len(c.Anthropic.Betas) == 0 {
		c.Anthropic.Betas = []string{DefaultBeta}
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = DefaultMaxTokens
	}
	if c.Anthropic.APIKeyEnv == "" {
		c.Anthropic.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Tools.FetchMaxUses == 0 {
		c.Tools.FetchMaxUses = DefaultFetchMaxUses
	}
	if c.Tools.SearchMaxUses == 0 {
		c.Tools.SearchMaxUses = DefaultSearchMaxUses
	}
	if c.Extraction.TimeoutSeconds == 0 {
		c.Extraction.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// applyEnv lets container deployments override the file without editing it.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.Subpath = getEnv("SERVER_SUBPATH", c.Server.Subpath)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Anthropic.BaseURL = getEnv("ANTHROPIC_BASE_URL", c.Anthropic.BaseURL)
	c.Anthropic.Model = getEnv("ANTHROPIC_MODEL", c.Anthropic.Model)
	c.Anthropic.MaxTokens = getEnvAsInt("ANTHROPIC_MAX_TOKENS", c.Anthropic.MaxTokens)
	c.Extraction.TimeoutSeconds = getEnvAsInt("EXTRACTION_TIMEOUT_SECONDS", c.Extraction.TimeoutSeconds)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.Subpath != "" {
		if !strings.HasPrefix(c.Server.Subpath, "/") {
			return errors.New("server.subpath must start with '/'")
		}
		c.Server.Subpath = strings.TrimRight(c.Server.Subpath, "/")
	}
	if c.Anthropic.MaxTokens < 1 {
		return errors.New("anthropic.max_tokens must be positive")
	}
	if c.Tools.FetchMaxUses < 1 || c.Tools.SearchMaxUses < 1 {
		return errors.New("tools max uses must be positive")
	}
	if c.Extraction.TimeoutSeconds < 1 {
		return errors.New("extraction.timeout_seconds must be positive")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
