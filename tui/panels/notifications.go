package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/stocky/internal/notify"
	"github.com/zappabad/stocky/tui/styles"
)

// NotificationsPanel lists fill notifications, newest first.
type NotificationsPanel struct {
	items         []notify.Notification
	unread        int
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewNotificationsPanel creates a new notifications panel.
func NewNotificationsPanel() *NotificationsPanel {
	return &NotificationsPanel{}
}

// Update handles messages for the panel.
func (p *NotificationsPanel) Update(msg tea.Msg) (*NotificationsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.items)-1 {
				p.selectedIndex++
				visibleItems := p.height - 4
				if p.selectedIndex >= p.scrollOffset+visibleItems {
					p.scrollOffset = p.selectedIndex - visibleItems + 1
				}
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *NotificationsPanel) View() string {
	var content strings.Builder

	if len(p.items) == 0 {
		content.WriteString(styles.MutedStyle.Render("알림이 없습니다"))
	} else {
		visibleItems := p.height - 4
		if visibleItems < 1 {
			visibleItems = 1
		}
		start := p.scrollOffset
		end := start + visibleItems
		if end > len(p.items) {
			end = len(p.items)
		}

		for i := start; i < end; i++ {
			n := p.items[i]

			marker := styles.BuyStyle.Render("▲")
			if n.Type == notify.KindSell {
				marker = styles.SellStyle.Render("▼")
			}
			msgStyle := styles.MutedStyle
			if !n.IsRead {
				msgStyle = styles.UnreadStyle
			}

			line := fmt.Sprintf("%s %s %s",
				marker,
				styles.TimeStyle.Render(n.Time),
				msgStyle.Render(truncate(n.Message, p.width-16)))

			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}
			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	label := "🔔 알림"
	if p.unread > 0 {
		label = fmt.Sprintf("🔔 알림 (%d)", p.unread)
	}
	title := styles.RenderTitle(label, p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *NotificationsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NotificationsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetNotifications replaces the list and the unread count.
func (p *NotificationsPanel) SetNotifications(items []notify.Notification, unread int) {
	p.items = items
	p.unread = unread
	if p.selectedIndex >= len(p.items) {
		p.selectedIndex = len(p.items) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// Unread returns the unread count last set.
func (p *NotificationsPanel) Unread() int {
	return p.unread
}
