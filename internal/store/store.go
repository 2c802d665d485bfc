// Package store persists the content history as a single JSON array under a
// fixed key. Every backend stores the whole collection at once; the last
// writer wins and there is no cross-process locking.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
)

// HistoryKey is the key the history collection is stored under.
const HistoryKey = "content_studio_history"

// Backend loads and saves the history collection.
type Backend interface {
	// Load returns the stored entries, or nil with no error when nothing has
	// been stored yet.
	Load(ctx context.Context) ([]core.HistoryEntry, error)
	// Save replaces the stored collection.
	Save(ctx context.Context, entries []core.HistoryEntry) error
	Close() error
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.History) (Backend, error) {
	switch cfg.Backend {
	case "file", "":
		return NewFile(cfg.File)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	case "redis":
		return NewRedis(ctx, cfg.Redis)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

func decode(data []byte) ([]core.HistoryEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var entries []core.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("stored history is corrupt: %w", err)
	}
	return entries, nil
}

func encode(entries []core.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}
