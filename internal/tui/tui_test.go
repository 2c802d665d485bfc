package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"contentstudio/internal/core"
	"contentstudio/internal/history"
	"contentstudio/internal/store"
)

func seeded(t *testing.T) *history.Store {
	t.Helper()
	h := history.Open(context.Background(), store.NewMemory())
	now := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	entries := []struct {
		kind  core.ContentKind
		topic string
		title string
	}{
		{core.KindBlogPost, "AI in marketing", "How AI is Transforming Content Marketing"},
		{core.KindAdCopy, "Spring sale", "Spring Sale Ads"},
		{core.KindCompetitorAnalysis, "MarketingTruth", "Why AI Content Wins"},
	}
	for i, e := range entries {
		entry := history.NewEntry(now.Add(time.Duration(i)*time.Minute), e.kind, e.topic, e.title, "## Body\nText", []string{"ai"}, core.ContentRequest{Topic: e.topic})
		if err := h.Append(context.Background(), entry); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	return h
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestNavigation(t *testing.T) {
	m := newModel(seeded(t))
	if len(m.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m.entries))
	}
	if m.entries[0].Title != "Why AI Content Wins" {
		t.Errorf("newest entry should come first, got %q", m.entries[0].Title)
	}

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("j"))
	if m.cursor != 2 {
		t.Errorf("cursor should stop at the last entry, got %d", m.cursor)
	}
	m, _ = update(t, m, runes("k"))
	if m.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", m.cursor)
	}
}

func TestKindFilter(t *testing.T) {
	m := newModel(seeded(t))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.kind() != core.KindBlogPost || len(m.entries) != 1 {
		t.Fatalf("expected blog posts only, got %q with %d entries", m.kind(), len(m.entries))
	}
	if !strings.Contains(m.View(), "[Blog Post]") {
		t.Error("header should show the active filter")
	}

	for range core.ContentKinds {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	if m.kind() != "" || len(m.entries) != 3 {
		t.Errorf("filter should wrap back to all, got %q with %d entries", m.kind(), len(m.entries))
	}
}

func TestSearch(t *testing.T) {
	m := newModel(seeded(t))

	m, _ = update(t, m, runes("/"))
	if !m.searching {
		t.Fatal("slash should start searching")
	}
	m, _ = update(t, m, runes("spring"))
	if len(m.entries) != 1 || m.entries[0].Title != "Spring Sale Ads" {
		t.Fatalf("unexpected search result: %+v", m.entries)
	}

	// Keys typed while searching do not trigger commands.
	m, _ = update(t, m, runes("q"))
	if m.quitting {
		t.Error("q while searching should be text")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("enter should leave search mode")
	}
}

func TestDelete(t *testing.T) {
	h := seeded(t)
	m := newModel(h)

	m, cmd := update(t, m, runes("d"))
	if cmd == nil {
		t.Fatal("delete should return a command")
	}
	m, _ = update(t, m, cmd())

	if h.Len() != 2 || len(m.entries) != 2 {
		t.Errorf("expected 2 entries after delete, store %d, view %d", h.Len(), len(m.entries))
	}
	if !strings.Contains(m.status, "Why AI Content Wins") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestClearNeedsConfirmation(t *testing.T) {
	h := seeded(t)
	m := newModel(h)

	m, _ = update(t, m, runes("C"))
	m, cmd := update(t, m, runes("n"))
	if cmd != nil || h.Len() != 3 {
		t.Fatal("declining should keep the history")
	}

	m, _ = update(t, m, runes("C"))
	m, cmd = update(t, m, runes("y"))
	if cmd == nil {
		t.Fatal("confirming should return a command")
	}
	m, _ = update(t, m, cmd())
	if h.Len() != 0 || len(m.entries) != 0 {
		t.Errorf("history should be empty, store %d, view %d", h.Len(), len(m.entries))
	}
	if !strings.Contains(m.View(), "Nothing here yet.") {
		t.Error("empty list should say so")
	}
}

func TestQuit(t *testing.T) {
	m := newModel(seeded(t))
	m, cmd := update(t, m, runes("q"))
	if !m.quitting || cmd == nil {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 10, "a longe..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
