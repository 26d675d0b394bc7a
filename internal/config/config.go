// Package config loads console settings.
//
// Sources, highest priority first:
//  1. explicit --config path;
//  2. CONFIG_PATH;
//  3. environment only.
//
// Environment variables always overlay values read from a file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
)

// Store drivers
const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
}

type StoreConfig interface {
	GetStoreDriver() string
	GetStorePath() string
}

type mainConfig struct {
	EnvVars `yaml:",inline"`
	API     APISettings   `yaml:"api"`
	Store   StoreSettings `yaml:"store"`
}

var _ Config = (*mainConfig)(nil)

// APISettings locate and pace the backend.
type APISettings struct {
	BaseURL        string        `yaml:"base_url"        env:"API_BASE_URL"    env-default:"http://localhost:8080/subscription-service/api"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"15s"`
	RateLimit      float64       `yaml:"rate_limit"      env:"RATE_LIMIT"      env-default:"0"`
	RateBurst      int           `yaml:"rate_burst"      env:"RATE_BURST"      env-default:"1"`
}

// StoreSettings select where the session is persisted. An empty Path is
// derived from the data folder.
type StoreSettings struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"file"`
	Path   string `yaml:"path"   env:"STORE_PATH"`
}

// New returns the configuration held by the environment alone.
func New() (Config, error) {
	return Load("")
}

// Load reads the configuration from path, CONFIG_PATH or the environment,
// in that order.
func Load(path string) (Config, error) {
	var cfg mainConfig

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *mainConfig) validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case StoreDriverFile, StoreDriverSQLite:
	default:
		return errs.Wrapf(errs.ErrInvalidRequest, "unknown store driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errs.Wrapf(errs.ErrInvalidRequest, "api base url is required")
	}
	if c.API.RateLimit < 0 {
		return errs.Wrapf(errs.ErrInvalidRequest, "rate limit must not be negative")
	}
	return nil
}

func (c *mainConfig) GetAPIBaseURL() string {
	return strings.TrimSpace(c.API.BaseURL)
}

func (c *mainConfig) GetRequestTimeout() time.Duration {
	return c.API.RequestTimeout
}

// GetRateLimit is in requests per second. 0 disables limiting.
func (c *mainConfig) GetRateLimit() float64 {
	return c.API.RateLimit
}

func (c *mainConfig) GetRateBurst() int {
	if c.API.RateBurst < 1 {
		return 1
	}
	return c.API.RateBurst
}

func (c *mainConfig) GetStoreDriver() string {
	return c.Store.Driver
}

func (c *mainConfig) GetStorePath() string {
	if c.Store.Path != "" {
		return expandHome(c.Store.Path)
	}
	name := "session.json"
	if c.Store.Driver == StoreDriverSQLite {
		name = "session.db"
	}
	return filepath.Join(c.GetDataFolder(), name)
}
