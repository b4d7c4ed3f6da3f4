package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend drivers accepted by Open
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Options selects and configures a backend
type Options struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	RedisURL  string `yaml:"redisURL"`
	Namespace string `yaml:"namespace"`
}

// Open builds the backend named by opts.Driver
func Open(opts Options) (Storage, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(opts.Path)
	case DriverRedis:
		return NewRedis(opts.RedisURL, opts.Namespace)
	case DriverSQLite:
		if err := os.MkdirAll(opts.Path, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite storage: %w", err)
		}
		return NewSQLite(filepath.Join(opts.Path, "storefront.db"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
