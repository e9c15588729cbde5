package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/stocky/internal/clock"
	"github.com/zappabad/stocky/internal/events"
	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/internal/notify"
	"github.com/zappabad/stocky/tui/panels"
	"github.com/zappabad/stocky/tui/styles"
)

// Clock is the session state the TUI reads.
type Clock interface {
	VirtualDate() string
	Feed(n int) []news.Record
	// FeedReady is closed once the feed is restored or its build finished.
	FeedReady() <-chan struct{}
}

// Inbox is the fill notification list. It is optional.
type Inbox interface {
	Notifications() []notify.Notification
	Unread() int
	MarkAllRead()
}

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusNews          PanelFocus = 0
	FocusNotifications PanelFocus = 1
)

const (
	feedSize       = 50
	refreshEvery   = 500 * time.Millisecond
	statusLifetime = 5 * time.Second
)

// Model is the main TUI application model.
type Model struct {
	nickname string
	clock    Clock
	inbox    Inbox
	events   <-chan events.Event

	newsPanel  *panels.NewsPanel
	notifPanel *panels.NotificationsPanel

	focusedPanel PanelFocus
	virtualDate  string

	width  int
	height int

	statusMsg   string
	statusUntil time.Time
	ready       bool
}

// NewModel creates a new TUI model. inbox may be nil and evs may be nil.
func NewModel(nickname string, c Clock, inbox Inbox, evs <-chan events.Event) *Model {
	return &Model{
		nickname:    nickname,
		clock:       c,
		inbox:       inbox,
		events:      evs,
		newsPanel:   panels.NewNewsPanel(),
		notifPanel:  panels.NewNotificationsPanel(),
		virtualDate: c.VirtualDate(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(
		m.newsPanel.Init(),
		m.listenEvents(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.cycleFocus()
		case "r":
			if m.inbox != nil {
				m.inbox.MarkAllRead()
				m.refresh()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.newsPanel, cmd = m.newsPanel.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case eventMsg:
		m.handleEvent(events.Event(msg))
		cmds = append(cmds, m.listenEvents())

	case tickMsg:
		m.refresh()
		if !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}
		cmds = append(cmds, m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(ev events.Event) {
	if ev.VirtualDate != "" {
		m.virtualDate = ev.VirtualDate
	}
	switch ev.Type {
	case events.TypeFeedLoaded, events.TypeNewsReleased:
		m.newsPanel.SetNews(m.clock.Feed(feedSize))
	case events.TypeOrderFilled:
		if n, ok := ev.Payload.(notify.Notification); ok {
			m.setStatus(n.Message)
		}
		m.refreshInbox()
	}
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusNews:
		m.newsPanel, cmd = m.newsPanel.Update(msg)
	case FocusNotifications:
		m.notifPanel, cmd = m.notifPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.newsPanel.SetFocus(m.focusedPanel == FocusNews)
	m.notifPanel.SetFocus(m.focusedPanel == FocusNotifications)

	// Layout:
	// ┌──────────── header: nickname, date ──────────┐
	// │        News (2/3)        │ Notifications     │
	// └───────────────── status bar ─────────────────┘
	bodyHeight := m.height - 2
	newsWidth := m.width * 2 / 3
	m.newsPanel.SetSize(newsWidth, bodyHeight)
	m.notifPanel.SetSize(m.width-newsWidth, bodyHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.newsPanel.View(),
		m.notifPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatusBar())
}

func (m *Model) renderHeader() string {
	name := m.nickname
	if name == "" {
		name = "투자자"
	}
	left := styles.HeaderStyle.Render("📈 stocky · " + name)
	right := styles.DateStyle.Render(m.virtualDate)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right)
}

func (m *Model) renderStatusBar() string {
	help := []string{
		styles.StatusBarKeyStyle.Render("Tab") + styles.StatusBarDescStyle.Render(" focus"),
		styles.StatusBarKeyStyle.Render("↑↓") + styles.StatusBarDescStyle.Render(" select"),
		styles.StatusBarKeyStyle.Render("Enter") + styles.StatusBarDescStyle.Render(" summary"),
		styles.StatusBarKeyStyle.Render("r") + styles.StatusBarDescStyle.Render(" mark read"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	helpStr := lipgloss.JoinHorizontal(lipgloss.Center, help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3], " │ ", help[4])

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + status)
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusUntil = time.Now().Add(statusLifetime)
}

func (m *Model) cycleFocus() {
	m.focusedPanel = (m.focusedPanel + 1) % 2
}

func (m *Model) refresh() {
	m.virtualDate = m.clock.VirtualDate()
	m.newsPanel.SetNews(m.clock.Feed(feedSize))
	select {
	case <-m.clock.FeedReady():
		m.newsPanel.SetLoaded()
	default:
	}
	m.refreshInbox()
}

func (m *Model) refreshInbox() {
	if m.inbox == nil {
		return
	}
	m.notifPanel.SetNotifications(m.inbox.Notifications(), m.inbox.Unread())
}

// Date returns the date label shown in the header.
func (m *Model) Date() string {
	return clock.DisplayDate(m.virtualDate)
}

func (m *Model) listenEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// eventMsg carries a session event into the update loop.
type eventMsg events.Event

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}
