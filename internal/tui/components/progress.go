package components

import (
	"fmt"

	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct returns a color for how much of a debt is repaid:
// red when barely started, green when nearly done.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return t.Good
	case pct >= 0.4:
		return t.Accent
	case pct >= 0.15:
		return t.Warn
	default:
		return t.Bad
	}
}

func clampPct(pct float64) float64 {
	return min(max(pct, 0), 1)
}

// ProgressBar renders a solid bar with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampPct(pct)
	color := ColorForPct(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return bar.ViewAs(pct) + space + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}

// LabeledBar renders "label  [bar] pct" with a fixed label column.
func LabeledBar(label string, pct float64, labelW, barW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	if lipgloss.Width(label) > labelW {
		label = truncate(label, labelW)
	}
	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space + ProgressBar(pct, barW)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
