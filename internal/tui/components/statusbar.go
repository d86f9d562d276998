package components

import (
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the current message (or data age) on the right.
func RenderStatusBar(width int, hints, right string, isErr bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rightStyle := base
	if isErr {
		rightStyle = lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface).Bold(true)
	}

	left := " " + hints
	right += " "

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := base.Render(left) +
		base.Render(spaces(padding)) +
		rightStyle.Render(right)

	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(bar)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
