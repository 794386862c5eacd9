package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tickup/internal/counter"
	"github.com/verte-zerg/tickup/internal/dom"
	"github.com/verte-zerg/tickup/internal/page"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3A3A3A")).
			Padding(0, 1)
)

// renderPage draws the layout line for line, so row y of the result is
// row y of the page.
func renderPage(layout *page.Layout, state func(*dom.Element) counter.State) string {
	lines := make([]string, 0, layout.Height)
	for _, s := range layout.Sections {
		for i := 0; i < s.Gap; i++ {
			lines = append(lines, "")
		}
		if s.Title != "" {
			lines = append(lines, sectionStyle.Render(truncateLine(s.Title, layout.CardWidth*layout.Columns)), "")
		}
		for _, row := range s.Rows {
			cards := make([]string, 0, len(row))
			for _, el := range row {
				cards = append(cards, renderCard(el, layout.CardWidth, state))
			}
			joined := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
			lines = append(lines, strings.Split(joined, "\n")...)
		}
	}
	return strings.Join(lines, "\n")
}

func renderCard(el *dom.Element, width int, state func(*dom.Element) counter.State) string {
	inner := width - 4
	if inner < 1 {
		inner = 1
	}
	value := el.Content()
	style := valueStyle
	if state != nil && state(el) != counter.Idle {
		style = activeStyle
	}
	label := labelStyle.Render(truncateLine(el.Label, inner))
	body := label + "\n" + style.Render(truncateLine(value, inner))
	return cardStyle.Width(width - 2).Render(body)
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
