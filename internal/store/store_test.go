package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
)

func sampleEntries() []core.HistoryEntry {
	return []core.HistoryEntry{
		{
			ID:          "1718000000000_ab12cd",
			ContentType: core.KindBlogPost,
			Topic:       "Remote work trends",
			GeneratedAt: "6/10/2024, 2:13:20 PM",
			Title:       "The Future of Remote Work",
			ContentBody: "## Intro\n\nBody",
			SEOKeywords: []string{"remote work", "hybrid"},
			FormData:    core.ContentRequest{Topic: "Remote work trends", Tone: "Professional", WordCount: 1200},
		},
		{
			ID:          "1717000000000_zz99yy",
			ContentType: core.KindCompetitorAnalysis,
			Topic:       "Competitor Analysis",
			Title:       "Competitor Analysis",
			SEOKeywords: []string{},
		},
	}
}

// exerciseBackend runs the behaviour every backend shares.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty store failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil entries from empty store, got %v", got)
	}

	want := sampleEntries()
	if err := b.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err = b.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	// Save replaces the whole collection.
	if err := b.Save(ctx, want[:1]); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, _ = b.Load(ctx)
	if len(got) != 1 || got[0].ID != want[0].ID {
		t.Errorf("expected single entry after replace, got %+v", got)
	}

	if err := b.Save(ctx, nil); err != nil {
		t.Fatalf("Save(nil) failed: %v", err)
	}
	got, err = b.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty collection, got %v, %v", got, err)
	}
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", HistoryKey+".json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	exerciseBackend(t, f)

	if _, err := os.Stat(path); err != nil {
		t.Errorf("history file should exist: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".history-*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestFileBackendCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	f, _ := NewFile(path)
	if _, err := f.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contentstudio.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	exerciseBackend(t, s)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestSQLiteBackendReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contentstudio.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	if err := s.Save(context.Background(), sampleEntries()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = s.Close()

	s, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = s.Close() }()
	got, err := s.Load(context.Background())
	if err != nil || len(got) != 2 {
		t.Errorf("expected 2 entries after reopen, got %d, %v", len(got), err)
	}
}

func TestMemoryBackend(t *testing.T) {
	m := NewMemory()
	exerciseBackend(t, m)

	m.SetRaw([]byte("garbage"))
	if _, err := m.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt contents")
	}
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis backend test")
	}

	r, err := NewRedis(context.Background(), config.RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	defer func() { _ = r.Close() }()
	_ = r.rdb.Del(context.Background(), r.key).Err()

	exerciseBackend(t, r)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.History
		wantErr bool
	}{
		{"file", config.History{Backend: "file", File: filepath.Join(dir, "h.json")}, false},
		{"sqlite", config.History{Backend: "sqlite", SQLitePath: filepath.Join(dir, "h.db")}, false},
		{"memory", config.History{Backend: "memory"}, false},
		{"unknown", config.History{Backend: "etcd"}, true},
		{"file without path", config.History{Backend: "file"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			_ = b.Close()
		})
	}
}
