// Package config loads the client configuration from a TOML file with
// environment variable overrides. A .env file next to the working directory
// is honored when present.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL        = "http://localhost:8000/api/v1"
	DefaultTimeout        = 10 * time.Second
	DefaultAnalyzeTimeout = 30 * time.Second
)

// Config holds the tunable settings of the client.
type Config struct {
	BaseURL          string `toml:"base_url"`
	TimeoutSec       int    `toml:"timeout_sec"`
	UploadTimeoutSec int    `toml:"upload_timeout_sec"`
	StatePath        string `toml:"state_path,omitempty"`
	LogLevel         string `toml:"log_level,omitempty"`

	// TelegramInitData is supplied by an embedding launcher, never from the
	// config file.
	TelegramInitData string `toml:"-"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		TimeoutSec:       int(DefaultTimeout / time.Second),
		UploadTimeoutSec: int(DefaultAnalyzeTimeout / time.Second),
		LogLevel:         "warn",
	}
}

func (c *Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c *Config) UploadTimeout() time.Duration {
	if c.UploadTimeoutSec <= 0 {
		return DefaultAnalyzeTimeout
	}
	return time.Duration(c.UploadTimeoutSec) * time.Second
}

// Read decodes a Config from the provided reader on top of the defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	// Missing .env is not an error.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			cfg, err = Read(f)
			if err != nil {
				return nil, fmt.Errorf("reading config from %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("open config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Write encodes the Config to the provided writer.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getEnv("SNAPCAL_API_URL", c.BaseURL)
	c.StatePath = getEnv("SNAPCAL_STATE_PATH", c.StatePath)
	c.LogLevel = getEnv("SNAPCAL_LOG_LEVEL", c.LogLevel)
	c.TelegramInitData = getEnv("SNAPCAL_TELEGRAM_INIT_DATA", "")
	if v := os.Getenv("SNAPCAL_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSec = n
		}
	}
	if v := os.Getenv("SNAPCAL_UPLOAD_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.UploadTimeoutSec = n
		}
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
