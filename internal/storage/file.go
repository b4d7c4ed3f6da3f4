package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// File stores each key as a JSON file inside a directory
type File struct {
	dir string
}

// NewFile creates the directory when needed
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("file storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	return &File{dir: dir}, nil
}

var _ Storage = (*File)(nil)

func (f *File) path(key string) string {
	return filepath.Join(f.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (f *File) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Save replaces the file atomically so a crash never leaves a half-written record
func (f *File) Save(ctx context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *File) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
