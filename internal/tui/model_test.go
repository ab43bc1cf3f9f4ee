package tui

import (
	"strings"
	"testing"

	"pocketchat/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.DataRoot = t.TempDir()
	cfg.StreamDelayMs = 1
	application, err := app.NewApplication(cfg)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	t.Cleanup(application.Close)
	return New(application)
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a much longer session title", 10, "a much lo…"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestComputeLayoutHidesSidebarWhenNarrow(t *testing.T) {
	m := newTestModel(t)
	m.width = 70
	m.height = 24
	if l := m.computeLayout(); l.SidebarW != 0 {
		t.Fatalf("narrow terminal should drop the sidebar, got %d", l.SidebarW)
	}

	m.width = 120
	if l := m.computeLayout(); l.SidebarW != sidebarWidth {
		t.Fatalf("wide terminal should show the sidebar, got %d", l.SidebarW)
	}
}

func TestModelRendersAfterResize(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(*Model)

	view := m.View()
	if !strings.Contains(view, "pocketchat") {
		t.Fatalf("view missing top bar: %q", view)
	}
	if !strings.Contains(view, "Chats") {
		t.Fatalf("view missing session pane")
	}
}

func TestNewChatKeyCreatesSession(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(*Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(*Model)

	if len(m.sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(m.sessions))
	}
	if m.app.Controller.ActiveID() == "" {
		t.Fatalf("new chat did not become active")
	}
}

func TestDeleteSelectedRemovesSession(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(*Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(*Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = next.(*Model)

	if len(m.sessions) != 0 {
		t.Fatalf("expected no sessions after delete, got %d", len(m.sessions))
	}
}

func TestDarkModeToggleIsPersisted(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(*Model)

	wasDark := m.theme.Dark
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = next.(*Model)

	if m.theme.Dark == wasDark {
		t.Fatalf("theme did not toggle")
	}
	if m.app.Store.DarkMode(wasDark) != m.theme.Dark {
		t.Fatalf("preference not persisted")
	}
}

func TestMarkdownRendererPlainAndCode(t *testing.T) {
	r := NewMarkdownRenderer()

	out := r.Render("plain text", 80)
	if !strings.Contains(out, "plain text") {
		t.Fatalf("plain text lost: %q", out)
	}

	out = r.Render("# Title\n\nSome **bold** words.", 80)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Fatalf("markdown content lost: %q", out)
	}

	out = r.Render("```go\nfmt.Println(\"hi\")\n```", 80)
	if !strings.Contains(out, "Println") {
		t.Fatalf("code block content lost: %q", out)
	}
}
