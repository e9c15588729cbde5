package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/tui/styles"
)

// NewsPanel displays the active feed, newest first.
type NewsPanel struct {
	news          []news.Record
	spinner       spinner.Model
	loading       bool
	selectedIndex int
	scrollOffset  int
	focused       bool
	expanded      bool
	width         int
	height        int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.CompanyStyle)),
		loading: true,
	}
}

// Init starts the loading spinner.
func (p *NewsPanel) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
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
			if p.selectedIndex < len(p.news)-1 {
				p.selectedIndex++
				visibleItems := p.visibleItems()
				if p.selectedIndex >= p.scrollOffset+visibleItems {
					p.scrollOffset = p.selectedIndex - visibleItems + 1
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			p.expanded = !p.expanded
		}
	}
	return p, nil
}

func (p *NewsPanel) visibleItems() int {
	n := p.height - 4
	if p.expanded {
		n -= 3
	}
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	if len(p.news) == 0 {
		if p.loading {
			content.WriteString(p.spinner.View() + styles.MutedStyle.Render(" 뉴스를 불러오는 중..."))
		} else {
			content.WriteString(styles.MutedStyle.Render("뉴스가 없습니다"))
		}
	} else {
		visibleItems := p.visibleItems()
		start := p.scrollOffset
		end := start + visibleItems
		if end > len(p.news) {
			end = len(p.news)
		}

		for i := start; i < end; i++ {
			item := p.news[i]

			company := ""
			if item.Company != "" {
				company = styles.CompanyStyle.Render("["+item.Company+"]") + " "
			}
			headline := truncate(item.Title, p.width-lipgloss.Width(company)-14)

			line := fmt.Sprintf("%s %s%s",
				styles.TimeStyle.Render(item.DisplayDate),
				company,
				styles.SentimentStyle(item.Sentiment).Render(headline))

			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}

			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.news) > visibleItems {
			content.WriteString("\n")
			content.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.news))))
		}

		if p.expanded {
			if sel := p.SelectedNews(); sel != nil {
				content.WriteString("\n\n")
				content.WriteString(styles.RowStyle.Render(truncate(sel.Summary, 2*(p.width-6))))
			}
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 뉴스", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *NewsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetNews replaces the feed. The selection follows the previously selected
// record when it is still present.
func (p *NewsPanel) SetNews(items []news.Record) {
	var selected news.RecordID
	hadSelection := false
	if sel := p.SelectedNews(); sel != nil {
		selected, hadSelection = sel.ID, true
	}

	p.news = items
	if len(items) > 0 {
		p.loading = false
	}
	p.selectedIndex = 0
	if hadSelection {
		for i, it := range items {
			if it.ID == selected {
				p.selectedIndex = i
				break
			}
		}
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// SetLoaded stops the spinner; an empty feed then reads as empty.
func (p *NewsPanel) SetLoaded() {
	p.loading = false
}

// SelectedNews returns the currently selected record.
func (p *NewsPanel) SelectedNews() *news.Record {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.news) {
		return &p.news[p.selectedIndex]
	}
	return nil
}

// truncate shortens s to n runes. n <= 0 means the width is not known yet.
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
