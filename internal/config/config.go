package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultRequestDelaySeconds = 3

// Config is the validated run configuration: the tracked items with their
// buy prices from the JSON config file, plus environment overrides.
type Config struct {
	AppID               int                `json:"appid"`
	Currency            int                `json:"currency"`
	OutputFile          string             `json:"output_file"`
	Items               map[string]float64 `json:"items"`
	RequestDelaySeconds int                `json:"request_delay_seconds"`

	// From the environment, not the config file.
	DatabaseURL string `json:"-"`
	LogLevel    string `json:"-"`
}

// Load reads and validates the JSON config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{RequestDelaySeconds: defaultRequestDelaySeconds}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.AppID <= 0 {
		return nil, errors.New("config: appid must be a positive integer")
	}
	if cfg.OutputFile == "" {
		return nil, errors.New("config: output_file is required")
	}
	if len(cfg.Items) == 0 {
		return nil, errors.New("config: items must not be empty")
	}
	if cfg.RequestDelaySeconds < 0 {
		return nil, errors.New("config: request_delay_seconds must not be negative")
	}

	out, err := normalizePath(cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("config: resolve output_file: %w", err)
	}
	cfg.OutputFile = out

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	return cfg, nil
}

// RequestDelay is the pause between successive market lookups.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds) * time.Second
}

// normalizePath expands a leading ~ and returns a clean absolute path
// using forward slashes.
func normalizePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
