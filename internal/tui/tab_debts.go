package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/tui/components"
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// repaidShare is the fraction of principal already repaid, 0 when the
// original principal is unknown.
func repaidShare(d model.Debt) float64 {
	if d.Principal.Sign() <= 0 {
		return 0
	}
	paid := d.Principal.Sub(d.Outstanding)
	if paid.Sign() <= 0 {
		return 0
	}
	return paid.Div(d.Principal).InexactFloat64()
}

func (a App) renderDebtsTab(cw int) string {
	t := theme.Active
	cur := a.opts.Currency
	innerW := components.CardInnerWidth(cw)

	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	const format = "%-22s %-14s %12s %8s %10s  "
	barW := max(innerW-lipgloss.Width(fmt.Sprintf(format, "", "", "", "", ""))-18, 8)

	var list strings.Builder
	list.WriteString(head.Render(fmt.Sprintf(format, "Name", "Type", "Outstanding", "Rate", "EMI") + "Repaid"))
	for i, d := range a.debts {
		row := fmt.Sprintf(format,
			truncStr(d.Name, 22),
			d.Kind.Label(),
			cur.Money(d.Outstanding),
			cli.FormatRate(d.AnnualRate),
			cur.Money(d.MinimumPayment),
		)
		style := cell
		if i == a.debtCursor {
			style = sel
		}
		list.WriteString("\n")
		list.WriteString(style.Render(row))
		list.WriteString(components.ProgressBar(repaidShare(d), barW))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(fmt.Sprintf("Debts (%d)", len(a.debts)), list.String(), cw))
	if a.debtCursor >= 0 && a.debtCursor < len(a.debts) {
		b.WriteString("\n")
		b.WriteString(a.debtDetail(a.debts[a.debtCursor], cw))
	}
	return b.String()
}

func (a App) debtDetail(d model.Debt, cw int) string {
	t := theme.Active
	cur := a.opts.Currency
	rounder := money.Rounder{Places: cur.Decimals}

	widths := components.LayoutRow(cw, 2)

	var left strings.Builder
	left.WriteString(kvLine("Principal", cur.Money(d.Principal), t.TextPrimary))
	left.WriteString(kvLine("Outstanding", cur.Money(d.Outstanding), t.TextPrimary))
	left.WriteString(kvLine("Rate", cli.FormatRate(d.AnnualRate)+" a year", rateColor(d.AnnualRate)))
	left.WriteString(kvLine("Interest now", cur.Money(model.MonthlyInterest(d.Outstanding, d.AnnualRate, rounder))+"/mo", t.TextPrimary))
	if d.RemainingTermMonths > 0 {
		left.WriteString(kvLine("Tenure left", cli.FormatMonths(d.RemainingTermMonths), t.TextPrimary))
	}

	var right strings.Builder
	for _, s := range payoff.Strategies() {
		p := a.analysis.Plan(s)
		value := "not within plan"
		color := t.Bad
		if m, ok := p.PayoffMonths[d.ID]; ok {
			value = fmt.Sprintf("month %d · %s", m, payoff.AddMonths(a.analysis.ReferenceDate, m).Format(payoff.DateLayout))
			color = t.StrategyColor(string(s))
		}
		right.WriteString(kvLine(s.Label(), value, color))
	}

	return components.CardRow([]string{
		components.ContentCard(d.Name, strings.TrimSuffix(left.String(), "\n"), widths[0]),
		components.ContentCard("Cleared under", strings.TrimSuffix(right.String(), "\n"), widths[1]),
	})
}

func rateColor(rate money.Amount) lipgloss.Color {
	t := theme.Active
	switch {
	case rate.GreaterThanOrEqual(money.FromInt(24)):
		return t.Bad
	case rate.GreaterThanOrEqual(money.FromInt(12)):
		return t.Warn
	default:
		return t.Good
	}
}
