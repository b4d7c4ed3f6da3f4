// Package config loads storefront settings from defaults, an optional YAML file and
// STOREFRONT_* environment variables, in that order of precedence.
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

	"storefront/internal/api"
	"storefront/internal/logging"
	"storefront/internal/order"
	"storefront/internal/storage"
)

const envPrefix = "STOREFRONT_"

type API struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type Orders struct {
	StaleTime time.Duration `yaml:"staleTime"`
}

type Sandbox struct {
	Addr     string        `yaml:"addr"`
	TokenTTL time.Duration `yaml:"tokenTTL"`
}

// Config is the complete client configuration
type Config struct {
	API     API             `yaml:"api"`
	Retry   api.RetryConfig `yaml:"retry"`
	Storage storage.Options `yaml:"storage"`
	Orders  Orders          `yaml:"orders"`
	Log     logging.Options `yaml:"log"`
	Sandbox Sandbox         `yaml:"sandbox"`
}

// Default returns settings for a local backend on port 8080
func Default() *Config {
	dir := ".storefront"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".storefront")
	}
	return &Config{
		API:     API{BaseURL: "http://localhost:8080", Timeout: 10 * time.Second},
		Retry:   api.DefaultRetry(),
		Storage: storage.Options{Driver: storage.DriverFile, Path: dir, Namespace: "storefront"},
		Orders:  Orders{StaleTime: order.DefaultStaleTime},
		Log:     logging.Options{Level: "info", Format: "text"},
		Sandbox: Sandbox{Addr: ":9091", TokenTTL: time.Hour},
	}
}

// Load applies the file at path (if any) and then the environment on top of defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile overlays the YAML file at path; keys absent from the file keep their value
func (c *Config) LoadFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overlays STOREFRONT_* variables
func (c *Config) LoadFromEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	num := func(name string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("API_BASE_URL", &c.API.BaseURL)
	dur("API_TIMEOUT", &c.API.Timeout)
	num("RETRY_QUERY", &c.Retry.QueryRetries)
	num("RETRY_THROTTLED", &c.Retry.ThrottledRetries)
	num("RETRY_MUTATION", &c.Retry.MutationRetries)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_PATH", &c.Storage.Path)
	str("STORAGE_NAMESPACE", &c.Storage.Namespace)
	str("REDIS_URL", &c.Storage.RedisURL)
	dur("ORDERS_STALE_TIME", &c.Orders.StaleTime)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("SANDBOX_ADDR", &c.Sandbox.Addr)
	dur("SANDBOX_TOKEN_TTL", &c.Sandbox.TokenTTL)
	return errors.Join(errs...)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.baseURL %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.Retry.QueryRetries < 0 || c.Retry.ThrottledRetries < 0 || c.Retry.MutationRetries < 0 {
		errs = append(errs, errors.New("retry counts cannot be negative"))
	}
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite:
	case storage.DriverRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redisURL is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of memory, file, redis, sqlite", c.Storage.Driver))
	}
	if (c.Storage.Driver == storage.DriverFile || c.Storage.Driver == storage.DriverSQLite) && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Orders.StaleTime < 0 {
		errs = append(errs, errors.New("orders.staleTime cannot be negative"))
	}
	if c.Sandbox.TokenTTL <= 0 {
		errs = append(errs, errors.New("sandbox.tokenTTL must be positive"))
	}
	return errors.Join(errs...)
}
