// Package storage is the durable key-value substrate behind the cart and session
// records. Backends load at startup and are written through on every change.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no value is stored under the key
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when a stored record cannot be decoded
	ErrCorrupt = errors.New("corrupt record")
)

// Storage is the port every backend implements
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Closer is implemented by backends holding connections or files
type Closer interface {
	Close() error
}

type envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Record is one typed document persisted under a fixed key
type Record[T any] struct {
	storage Storage
	key     string
	version int
}

// NewRecord binds a typed record to a key
func NewRecord[T any](s Storage, key string, version int) *Record[T] {
	return &Record[T]{storage: s, key: key, version: version}
}

// Key the record is stored under
func (r *Record[T]) Key() string { return r.key }

// Load returns the stored state. Missing data yields ErrNotFound; undecodable data or
// a version mismatch yields ErrCorrupt.
func (r *Record[T]) Load(ctx context.Context) (T, error) {
	var zero T
	raw, err := r.storage.Load(ctx, r.key)
	if err != nil {
		return zero, err
	}
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("%s: %w: %v", r.key, ErrCorrupt, err)
	}
	if env.Version != r.version {
		return zero, fmt.Errorf("%s: %w: version %d, want %d", r.key, ErrCorrupt, env.Version, r.version)
	}
	return env.State, nil
}

// Save writes the state synchronously
func (r *Record[T]) Save(ctx context.Context, state T) error {
	raw, err := json.Marshal(envelope[T]{State: state, Version: r.version})
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.storage.Save(ctx, r.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}
	return nil
}

// Clear removes the record; clearing a missing record is not an error
func (r *Record[T]) Clear(ctx context.Context) error {
	if err := r.storage.Delete(ctx, r.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %s: %w", r.key, err)
	}
	return nil
}
