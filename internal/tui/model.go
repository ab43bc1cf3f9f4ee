package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocketchat/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSessions
	focusChat
)

type spinMsg struct{}

type pipelineEventMsg struct{ ev app.Event }

type submitDoneMsg struct{ err error }

type netMsg struct{ online bool }

type speechMsg struct {
	transcript string
	err        error
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const sidebarWidth = 28

type Model struct {
	app   *app.Application
	theme Theme
	help  helpModel

	width  int
	height int
	ready  bool

	focus    focusArea
	showHelp bool

	sessions   []app.Session
	sessionSel int

	input    textarea.Model
	chatVP   viewport.Model
	markdown *MarkdownRenderer

	loading    bool
	statusText string
	notice     string
	spinnerPos int

	online bool
	netSub *app.Subscription

	recognizing bool

	cancel   context.CancelFunc
	eventsCh chan app.Event
	doneCh   chan submitDoneMsg
}

func New(application *app.Application) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message, Enter sends. Tab switches focus."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	dark := application.Store.DarkMode(application.Config.Theme == "dark")
	if application.Config.Theme == "light" {
		dark = false
	}

	m := &Model{
		app:        application,
		theme:      NewTheme(dark),
		help:       newHelpModel(),
		width:      100,
		height:     30,
		focus:      focusInput,
		input:      ta,
		markdown:   NewMarkdownRenderer(),
		statusText: "Ready",
		online:     application.Monitor.Online(),
		netSub:     application.Monitor.Subscribe(),
	}
	m.refreshSessions()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitNetMsg())
}

type layout struct {
	SidebarW int
	ChatW    int
	ChatH    int
	InputW   int
}

func (m *Model) computeLayout() layout {
	l := layout{SidebarW: sidebarWidth}
	if m.width < 80 {
		l.SidebarW = 0
	}
	l.ChatW = m.width - l.SidebarW - 4
	if l.ChatW < 20 {
		l.ChatW = 20
	}
	// Top bar, input box and footer take five rows between them.
	l.ChatH = m.height - 7
	if l.ChatH < 5 {
		l.ChatH = 5
	}
	l.InputW = m.width - 4
	return l
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(m.width)

		l := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(l.ChatW, l.ChatH)
			m.ready = true
		} else {
			m.chatVP.Width = l.ChatW
			m.chatVP.Height = l.ChatH
		}
		m.input.SetWidth(max(10, l.InputW))
		m.updateChatViewport()
		return m, nil

	case tea.KeyMsg:
		keys := m.help.keys
		switch {
		case key.Matches(msg, keys.Quit):
			m.teardown()
			return m, tea.Quit

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.FocusNext):
			m.cycleFocus()
			return m, nil

		case key.Matches(msg, keys.DarkMode):
			m.theme = NewTheme(!m.theme.Dark)
			m.app.Store.SetDarkMode(m.theme.Dark)
			m.updateChatViewport()
			return m, nil

		case key.Matches(msg, keys.NewChat):
			m.app.Controller.NewConversation()
			m.refreshSessions()
			m.sessionSel = 0
			m.updateChatViewport()
			return m, nil

		case key.Matches(msg, keys.DeleteChat):
			m.deleteSelected()
			return m, nil

		case key.Matches(msg, keys.Speech):
			return m, m.startSpeech()

		case key.Matches(msg, keys.Enter):
			if m.focus == focusSessions {
				m.selectHighlighted()
				return m, nil
			}
			return m, m.onEnter()

		case msg.Type == tea.KeyUp:
			switch m.focus {
			case focusSessions:
				if m.sessionSel > 0 {
					m.sessionSel--
				}
				return m, nil
			case focusChat:
				m.chatVP.LineUp(1)
				return m, nil
			}
		case msg.Type == tea.KeyDown:
			switch m.focus {
			case focusSessions:
				if m.sessionSel < len(m.sessions)-1 {
					m.sessionSel++
				}
				return m, nil
			case focusChat:
				m.chatVP.LineDown(1)
				return m, nil
			}
		case msg.Type == tea.KeyPgUp:
			m.chatVP.ViewUp()
			return m, nil
		case msg.Type == tea.KeyPgDown:
			m.chatVP.ViewDown()
			return m, nil
		}

	case pipelineEventMsg:
		m.applyPipelineEvent(msg.ev)
		if m.loading {
			return m, m.waitPipelineMsg()
		}
		return m, nil

	case submitDoneMsg:
		m.loading = false
		m.statusText = "Ready"
		m.cancel = nil
		m.eventsCh = nil
		m.doneCh = nil
		m.refreshSessions()
		m.updateChatViewport()
		m.chatVP.GotoBottom()
		return m, nil

	case netMsg:
		m.online = msg.online
		return m, m.waitNetMsg()

	case speechMsg:
		m.recognizing = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("voice input failed: %v", msg.err)
		} else if msg.transcript != "" {
			m.input.SetValue(msg.transcript)
			m.notice = ""
		}
		return m, nil

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.loading {
			return m, m.spinTick()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) applyPipelineEvent(ev app.Event) {
	switch ev.Kind {
	case app.EventUserAppended:
		m.input.Reset()
		m.refreshSessions()
	case app.EventReveal:
		// Placeholder content grows in place; just re-render.
	case app.EventDone:
		m.statusText = "Ready"
	case app.EventFailed:
		m.statusText = "Request failed"
	}
	m.updateChatViewport()
	m.chatVP.GotoBottom()
}

func (m *Model) onEnter() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())
	if val == "" {
		return nil
	}
	if !m.online {
		m.notice = "offline: check your connection"
		return nil
	}
	if m.app.Pipeline.Busy() {
		m.notice = "still waiting on the previous message"
		return nil
	}
	m.notice = ""
	m.loading = true
	m.statusText = "Thinking…"
	m.spinnerPos = 0

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventsCh = make(chan app.Event, 64)
	m.doneCh = make(chan submitDoneMsg, 1)

	go func(input string, events chan app.Event, done chan submitDoneMsg) {
		err := m.app.Pipeline.Submit(ctx, input, func(ev app.Event) {
			select {
			case events <- ev:
			default:
				// Drop if the UI lags; the final state is committed anyway.
			}
		})
		done <- submitDoneMsg{err: err}
		close(events)
	}(val, m.eventsCh, m.doneCh)

	return tea.Batch(m.waitPipelineMsg(), m.spinTick())
}

func (m *Model) waitPipelineMsg() tea.Cmd {
	events := m.eventsCh
	done := m.doneCh
	return func() tea.Msg {
		if events == nil || done == nil {
			return nil
		}
		select {
		case ev, ok := <-events:
			if ok {
				return pipelineEventMsg{ev: ev}
			}
			return <-done
		case d := <-done:
			return d
		}
	}
}

func (m *Model) waitNetMsg() tea.Cmd {
	sub := m.netSub
	return func() tea.Msg {
		if sub == nil {
			return nil
		}
		online, ok := <-sub.C
		if !ok {
			return nil
		}
		return netMsg{online: online}
	}
}

func (m *Model) startSpeech() tea.Cmd {
	if m.recognizing {
		m.notice = "already listening"
		return nil
	}
	m.recognizing = true
	m.notice = "listening…"
	rec := m.app.Recognizer
	return func() tea.Msg {
		text, err := rec.Recognize(context.Background())
		return speechMsg{transcript: text, err: err}
	}
}

func (m *Model) spinTick() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m *Model) cycleFocus() {
	next := m.focus + 1
	if next > focusChat {
		next = focusInput
	}
	if next == focusSessions && m.computeLayout().SidebarW == 0 {
		next = focusChat
	}
	m.focus = next
	if m.focus == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) refreshSessions() {
	m.sessions = m.app.Controller.Sessions()
	if m.sessionSel >= len(m.sessions) {
		m.sessionSel = len(m.sessions) - 1
	}
	if m.sessionSel < 0 {
		m.sessionSel = 0
	}
}

func (m *Model) selectHighlighted() {
	if m.sessionSel < 0 || m.sessionSel >= len(m.sessions) {
		return
	}
	m.app.Controller.SelectConversation(m.sessions[m.sessionSel].ID)
	m.refreshSessions()
	m.updateChatViewport()
	m.chatVP.GotoBottom()
}

func (m *Model) deleteSelected() {
	if m.sessionSel < 0 || m.sessionSel >= len(m.sessions) {
		return
	}
	m.app.Controller.DeleteConversation(m.sessions[m.sessionSel].ID)
	m.refreshSessions()
	m.updateChatViewport()
}

func (m *Model) teardown() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.netSub != nil {
		m.netSub.Close()
	}
}

func (m *Model) updateChatViewport() {
	if !m.ready {
		return
	}
	l := m.computeLayout()
	chatWidth := l.ChatW - 2
	if chatWidth < 20 {
		chatWidth = 20
	}

	var b strings.Builder
	msgs := m.app.Controller.Messages()
	if len(msgs) == 0 {
		b.WriteString(m.theme.RoleSys.Render("No messages yet. Say something."))
	}
	for _, msg := range msgs {
		b.WriteString(m.renderMessage(msg, chatWidth))
		b.WriteString("\n\n")
	}
	m.chatVP.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderMessage(msg app.Message, width int) string {
	var roleStyle lipgloss.Style
	label := "SYS"
	switch msg.Role {
	case app.RoleUser:
		roleStyle = m.theme.RoleYou
		label = "YOU"
	case app.RoleAssistant:
		roleStyle = m.theme.RoleAI
		label = "BOT"
	default:
		roleStyle = m.theme.RoleSys
	}

	header := roleStyle.Render(label) + " " + m.theme.TopBarMeta.Render(msg.Timestamp.Format("15:04"))

	var body string
	if msg.Role == app.RoleAssistant {
		body = m.markdown.Render(msg.Content, width)
	} else {
		body = lipgloss.NewStyle().Foreground(m.theme.TextPrimary).Width(width).Render(msg.Content)
	}
	return header + "\n" + body
}

func (m *Model) View() string {
	if !m.ready {
		return "…"
	}
	if m.showHelp {
		return m.help.View(m.theme)
	}

	l := m.computeLayout()
	top := m.renderTopBar()
	main := m.renderMain(l)
	input := m.renderInputArea(l)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, main, input, footer)
}

func (m *Model) renderTopBar() string {
	title := m.theme.TopBarTitle.Render("pocketchat")
	status := m.theme.TopBarMeta.Render(m.statusText)
	if m.loading {
		status = m.theme.Spinner.Render(spinnerFrames[m.spinnerPos]) + " " + status
	}
	net := m.theme.TopBarMeta.Render("online")
	if !m.online {
		net = m.theme.Offline.Render("OFFLINE")
	}
	return m.theme.TopBar.Width(m.width).Render(title + "  " + status + "  " + net)
}

func (m *Model) renderMain(l layout) string {
	chatStyle := m.theme.Pane
	if m.focus == focusChat {
		chatStyle = m.theme.PaneFocused
	}
	chat := chatStyle.Width(l.ChatW).Height(l.ChatH).Render(m.chatVP.View())

	if l.SidebarW == 0 {
		return chat
	}

	sideStyle := m.theme.Pane
	if m.focus == focusSessions {
		sideStyle = m.theme.PaneFocused
	}
	side := sideStyle.Width(l.SidebarW).Height(l.ChatH).Render(m.renderSessionList(l))
	return lipgloss.JoinHorizontal(lipgloss.Top, side, chat)
}

func (m *Model) renderSessionList(l layout) string {
	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("Chats"))
	b.WriteString("\n")
	if len(m.sessions) == 0 {
		b.WriteString(m.theme.RoleSys.Render("(none yet)"))
	}
	activeID := m.app.Controller.ActiveID()
	for i, sess := range m.sessions {
		line := truncate(sess.Title, l.SidebarW-6)
		marker := "  "
		if sess.ID == activeID {
			marker = "• "
		}
		style := m.theme.SessionItem
		if i == m.sessionSel && m.focus == focusSessions {
			style = m.theme.SessionSel
		}
		b.WriteString(style.Render(marker + line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderInputArea(l layout) string {
	style := m.theme.InputBox
	if m.focus == focusInput {
		style = m.theme.InputBoxF
	}
	return style.Width(l.InputW).Render(m.input.View())
}

func (m *Model) renderFooter() string {
	if m.notice != "" {
		return m.theme.Offline.Render(m.notice)
	}
	return m.theme.Footer.Render("enter send · tab focus · ctrl+n new · ctrl+x delete · ctrl+b theme · ctrl+g help · ctrl+c quit")
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
