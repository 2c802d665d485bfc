// Package tui is the terminal history browser: a filterable list of past
// generations and analyses with a scrollable detail pane.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"contentstudio/internal/core"
	"contentstudio/internal/render"
)

const persistTimeout = 10 * time.Second

// History is what the browser needs from the history store.
type History interface {
	Filter(kind core.ContentKind, query string) []core.HistoryEntry
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// kindFilters are cycled by the kind key; "" shows every kind.
var kindFilters = append([]core.ContentKind{""}, core.ContentKinds...)

type model struct {
	hist    History
	entries []core.HistoryEntry
	cursor  int

	kindIdx      int
	search       textinput.Model
	searching    bool
	confirmClear bool

	detail viewport.Model
	width  int
	height int

	status   string
	err      error
	quitting bool
}

type deletedMsg struct {
	title string
	err   error
}

type clearedMsg struct{ err error }

func newModel(hist History) model {
	search := textinput.New()
	search.Placeholder = "search topic or title..."
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 30

	m := model{
		hist:   hist,
		search: search,
		detail: viewport.New(60, 20),
	}
	m.reload()
	return m
}

func (m model) kind() core.ContentKind {
	return kindFilters[m.kindIdx]
}

// reload re-reads the filtered entries and keeps the cursor in range.
func (m *model) reload() {
	m.entries = m.hist.Filter(m.kind(), m.search.Value())
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshDetail()
}

func (m *model) selected() (core.HistoryEntry, bool) {
	if len(m.entries) == 0 {
		return core.HistoryEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *model) refreshDetail() {
	entry, ok := m.selected()
	if !ok {
		m.detail.SetContent(styleMuted.Render("No history entries."))
		return
	}
	m.detail.SetContent(detailContent(entry, m.detail.Width))
	m.detail.GotoTop()
}

func detailContent(e core.HistoryEntry, width int) string {
	var sb strings.Builder
	sb.WriteString(styleFilter.Render(e.ContentType.Label()))
	sb.WriteString(styleMuted.Render("  " + e.GeneratedAt))
	sb.WriteString("\n")
	if e.Topic != "" {
		sb.WriteString(styleMuted.Render("Topic: " + e.Topic))
		sb.WriteString("\n")
	}
	if len(e.SEOKeywords) > 0 {
		sb.WriteString(styleMuted.Render("Keywords: " + strings.Join(e.SEOKeywords, ", ")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(render.Content(e.Title, e.ContentBody, width))
	return sb.String()
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = max(msg.Width-listWidth(msg.Width)-6, 20)
		m.detail.Height = max(msg.Height-6, 5)
		m.refreshDetail()
		return m, nil

	case deletedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Deleted %q", truncate(msg.title, 40))
		}
		m.reload()
		return m, nil

	case clearedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "History cleared"
		}
		m.cursor = 0
		m.reload()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc", "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = 0
		m.reload()
		return m, cmd
	}

	if m.confirmClear {
		m.confirmClear = false
		if key.Matches(msg, keys.Confirm) {
			return m, m.clearCmd()
		}
		m.status = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refreshDetail()
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
			m.refreshDetail()
		}

	case key.Matches(msg, keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, keys.Kind):
		m.kindIdx = (m.kindIdx + 1) % len(kindFilters)
		m.cursor = 0
		m.reload()

	case key.Matches(msg, keys.Delete):
		if entry, ok := m.selected(); ok {
			return m, m.deleteCmd(entry)
		}

	case key.Matches(msg, keys.Clear):
		if len(m.entries) > 0 {
			m.confirmClear = true
			m.status = "Clear all history? (y/n)"
		}

	case key.Matches(msg, keys.PageDown):
		m.detail.ViewDown()

	case key.Matches(msg, keys.PageUp):
		m.detail.ViewUp()
	}

	return m, nil
}

func (m model) deleteCmd(entry core.HistoryEntry) tea.Cmd {
	hist := m.hist
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		_, err := hist.Delete(ctx, entry.ID)
		return deletedMsg{title: entry.Title, err: err}
	}
}

func (m model) clearCmd() tea.Cmd {
	hist := m.hist
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		return clearedMsg{err: hist.Clear(ctx)}
	}
}

func listWidth(total int) int {
	if total <= 0 {
		return 40
	}
	return min(max(total/3, 28), 60)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	filter := "All"
	if k := m.kind(); k != "" {
		filter = k.Label()
	}
	header := styleHeader.Render("Content Studio History") + "  " +
		styleFilter.Render("["+filter+"]") + "  " +
		styleMuted.Render(fmt.Sprintf("%d entries", len(m.entries)))

	lw := listWidth(m.width)
	var list strings.Builder
	if len(m.entries) == 0 {
		list.WriteString(styleMuted.Render("Nothing here yet."))
	}
	for i, e := range m.entries {
		line := truncate(e.Title, lw-4)
		if i == m.cursor {
			list.WriteString(styleSelected.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
		list.WriteString(styleMuted.Render("  " + truncate(e.ContentType.Label()+" · "+e.GeneratedAt, lw-4)))
		list.WriteString("\n")
	}

	left := styleBox.Width(lw).Render(strings.TrimRight(list.String(), "\n"))
	right := styleBox.Render(m.detail.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	var footer string
	switch {
	case m.searching || m.search.Value() != "":
		footer = m.search.View()
	case m.err != nil:
		footer = styleError.Render("Error: " + m.err.Error())
	case m.status != "":
		footer = m.status
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer, helpView())
}

func helpView() string {
	parts := make([]string, 0, len(helpKeys))
	for _, b := range helpKeys {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

// Run starts the history browser and blocks until the user quits.
func Run(hist History) error {
	p := tea.NewProgram(newModel(hist), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
