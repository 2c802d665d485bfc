// Package history keeps the bounded, newest-first list of completed
// generations and analyses and mirrors it to a persistence backend.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentstudio/internal/core"
	"contentstudio/internal/logger"
)

// MaxEntries bounds the history length.
const MaxEntries = 50

// TimestampLayout is the human-readable layout of HistoryEntry.GeneratedAt.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Persister is where the history collection is mirrored.
type Persister interface {
	Load(ctx context.Context) ([]core.HistoryEntry, error)
	Save(ctx context.Context, entries []core.HistoryEntry) error
}

// Store is the in-memory history. It is the source of truth for the running
// process; every mutation writes the whole collection to the Persister.
type Store struct {
	mu        sync.RWMutex
	entries   []core.HistoryEntry
	persister Persister
}

// Open loads the persisted collection. A missing or unreadable collection
// starts the store empty; the read error is logged, never returned.
func Open(ctx context.Context, p Persister) *Store {
	s := &Store{persister: p}
	if p == nil {
		return s
	}

	entries, err := p.Load(ctx)
	if err != nil {
		logger.Warn("Discarding unreadable history", "error", err.Error())
		return s
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	s.entries = entries
	return s
}

// Append puts entry at the front, drops anything past MaxEntries and persists.
// The in-memory list is updated even when persisting fails.
func (s *Store) Append(ctx context.Context, entry core.HistoryEntry) error {
	s.mu.Lock()
	next := make([]core.HistoryEntry, 0, min(len(s.entries)+1, MaxEntries))
	next = append(next, entry)
	next = append(next, s.entries...)
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	s.entries = next
	snapshot := cloneEntries(next)
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// List returns a copy of all entries, newest first.
func (s *Store) List() []core.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the entry with id.
func (s *Store) Get(id string) (core.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return cloneEntry(e), true
		}
	}
	return core.HistoryEntry{}, false
}

// Delete removes the entry with id. It reports whether the entry existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	next := make([]core.HistoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	s.entries = next
	snapshot := cloneEntries(next)
	s.mu.Unlock()

	return true, s.persist(ctx, snapshot)
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	return s.persist(ctx, []core.HistoryEntry{})
}

// Filter returns the entries matching kind and query, newest first. An empty
// kind or "all" matches every kind. A blank query matches everything; otherwise
// the query must occur, case-insensitively, in the topic or the title.
func (s *Store) Filter(kind core.ContentKind, query string) []core.HistoryEntry {
	return Filter(s.List(), kind, query)
}

// Filter is the pure form of Store.Filter.
func Filter(entries []core.HistoryEntry, kind core.ContentKind, query string) []core.HistoryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]core.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if kind != "" && kind != "all" && e.ContentType != kind {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Topic), q) &&
			!strings.Contains(strings.ToLower(e.Title), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) persist(ctx context.Context, entries []core.HistoryEntry) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, entries); err != nil {
		logger.Error("Failed to persist history", err, "entries", len(entries))
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// NewEntry builds a history entry stamped with now. The id is the Unix time in
// milliseconds followed by six random characters.
func NewEntry(now time.Time, kind core.ContentKind, topic, title, body string, keywords []string, form core.ContentRequest) core.HistoryEntry {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return core.HistoryEntry{
		ID:          fmt.Sprintf("%d_%s", now.UnixMilli(), suffix),
		ContentType: kind,
		Topic:       topic,
		GeneratedAt: now.Format(TimestampLayout),
		Title:       title,
		ContentBody: body,
		SEOKeywords: append([]string{}, keywords...),
		FormData:    form,
	}
}

func cloneEntries(entries []core.HistoryEntry) []core.HistoryEntry {
	out := make([]core.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e core.HistoryEntry) core.HistoryEntry {
	if e.SEOKeywords != nil {
		e.SEOKeywords = append([]string{}, e.SEOKeywords...)
	}
	return e
}
