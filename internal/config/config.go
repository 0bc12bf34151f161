// Package config resolves nksadmin settings from defaults, the YAML config
// file, environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL   = "https://nks-backend-mou5.onrender.com/api"
	DefaultPageSize = 15
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"

	apiURLEnvVar      = "NKS_API_URL"
	tokenEnvVar       = "NKS_TOKEN"
	stateDirEnvVar    = "NKS_STATE_DIR"
	redisURLEnvVar    = "NKS_REDIS_URL"
	logLevelEnvVar    = "NKS_LOG_LEVEL"
	logFileEnvVar     = "NKS_LOG_FILE"
	pageSizeEnvVar    = "NKS_PAGE_SIZE"
	timeoutEnvVar     = "NKS_TIMEOUT"
	metricsFileEnvVar = "NKS_METRICS_FILE"
)

// Config holds the resolved settings.
type Config struct {
	APIURL      string        `yaml:"api_url,omitempty"`
	RedisURL    string        `yaml:"redis_url,omitempty"`
	LogLevel    string        `yaml:"log_level,omitempty"`
	LogFile     string        `yaml:"log_file,omitempty"`
	PageSize    int           `yaml:"page_size,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MetricsFile string        `yaml:"metrics_file,omitempty"`

	// Token comes from NKS_TOKEN only and is never written to disk.
	Token    string `yaml:"-"`
	StateDir string `yaml:"-"`
}

// DefaultStateDir returns ~/.nksadmin, or .nksadmin when there is no home.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nksadmin"
	}
	return filepath.Join(home, ".nksadmin")
}

// Defaults returns the built-in settings for stateDir.
func Defaults(stateDir string) *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		PageSize: DefaultPageSize,
		Timeout:  DefaultTimeout,
		StateDir: stateDir,
	}
}

// Load resolves the state directory (argument, then NKS_STATE_DIR, then
// the default), reads config.yaml from it if present and applies
// environment overrides.
func Load(stateDir string) (*Config, error) {
	if stateDir == "" {
		stateDir = GetEnv(stateDirEnvVar, DefaultStateDir())
	}
	cfg := Defaults(stateDir)

	data, err := os.ReadFile(cfg.ConfigPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.StateDir = stateDir
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIURL = GetEnv(apiURLEnvVar, c.APIURL)
	c.Token = GetEnv(tokenEnvVar, c.Token)
	c.RedisURL = GetEnv(redisURLEnvVar, c.RedisURL)
	c.LogLevel = GetEnv(logLevelEnvVar, c.LogLevel)
	c.LogFile = GetEnv(logFileEnvVar, c.LogFile)
	c.MetricsFile = GetEnv(metricsFileEnvVar, c.MetricsFile)

	if v := os.Getenv(pageSizeEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", pageSizeEnvVar, err)
		}
		c.PageSize = n
	}
	if v := os.Getenv(timeoutEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", timeoutEnvVar, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the resolved settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", c.PageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ConfigPath is the YAML file inside the state directory.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// SessionPath is the file-backed session store.
func (c *Config) SessionPath() string {
	return filepath.Join(c.StateDir, "session.json")
}

// LogPath returns the log destination. "-" means stderr.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.StateDir, "nksadmin.log")
}

// Save writes the persisted fields to config.yaml with restrictive permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// GetEnv returns the environment variable or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
