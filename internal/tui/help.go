package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Quit       key.Binding
	Enter      key.Binding
	FocusNext  key.Binding
	NewChat    key.Binding
	DeleteChat key.Binding
	DarkMode   key.Binding
	Speech     key.Binding
	Help       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		DeleteChat: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "delete selected chat"),
		),
		DarkMode: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle dark mode"),
		),
		Speech: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "voice input"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "help"),
		),
	}
}

type helpModel struct {
	keys  keyMap
	width int
}

func newHelpModel() helpModel {
	return helpModel{keys: defaultKeyMap(), width: 80}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View(t Theme) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	var b strings.Builder

	b.WriteString(t.PaneTitle.Render("pocketchat help"))
	b.WriteString("\n\n")
	rows := []struct{ k, d string }{
		{"enter", "send message"},
		{"tab", "switch focus (input / chats / history)"},
		{"ctrl+n", "new chat"},
		{"ctrl+x", "delete the selected chat"},
		{"up/down", "pick a chat, or scroll history"},
		{"ctrl+b", "toggle dark mode"},
		{"ctrl+r", "voice input (needs speech_command in config)"},
		{"ctrl+g", "close this help"},
		{"ctrl+c", "quit"},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", row.k)), row.d))
	}
	return b.String()
}
