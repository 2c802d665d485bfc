package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"contentstudio/internal/core"
)

// File keeps the history as a JSON file. Writes go to a temporary file that is
// renamed over the target, so a crash never leaves a half-written file.
type File struct {
	path string
}

// NewFile uses the JSON file at path.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("history file path is required")
	}
	return &File{path: path}, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load implements Backend.
func (f *File) Load(ctx context.Context) ([]core.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return decode(data)
}

// Save implements Backend.
func (f *File) Save(ctx context.Context, entries []core.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Close implements Backend.
func (f *File) Close() error { return nil }
