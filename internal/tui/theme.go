package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds every style the model renders with. Two palettes exist: the
// light default and a dark variant toggled at runtime, with the choice
// persisted through the session store.
type Theme struct {
	Dark bool

	TextPrimary lipgloss.Color
	TextMuted   lipgloss.Color
	Accent      lipgloss.Color
	Danger      lipgloss.Color
	Border      lipgloss.Color
	BorderHi    lipgloss.Color

	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style
	Offline     lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleSys lipgloss.Style

	SessionItem lipgloss.Style
	SessionSel  lipgloss.Style
}

func NewTheme(dark bool) Theme {
	var t Theme
	t.Dark = dark
	if dark {
		t.TextPrimary = lipgloss.Color("#f2f2f2")
		t.TextMuted = lipgloss.Color("#9aa0a6")
		t.Accent = lipgloss.Color("#8ab4f8")
		t.Danger = lipgloss.Color("#f28b82")
		t.Border = lipgloss.Color("#5f6368")
		t.BorderHi = lipgloss.Color("#e8eaed")
	} else {
		t.TextPrimary = lipgloss.Color("#1d2433")
		t.TextMuted = lipgloss.Color("#4a5568")
		t.Accent = lipgloss.Color("#2b6cb0")
		t.Danger = lipgloss.Color("#c53030")
		t.Border = lipgloss.Color("#a0aec0")
		t.BorderHi = lipgloss.Color("#1d2433")
	}

	t.TopBar = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneFocused = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Offline = lipgloss.NewStyle().Bold(true).Foreground(t.Danger)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.RoleSys = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.SessionItem = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.SessionSel = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	return t
}
