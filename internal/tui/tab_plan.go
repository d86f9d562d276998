package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/tui/components"
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderPlanTab(p payoff.PlanResult, offset, cw, h int) string {
	t := theme.Active
	cur := a.opts.Currency

	interestColor := t.TextPrimary
	if p.InterestProvisional() {
		interestColor = t.Warn
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Debt-free", Value: cli.FormatDebtFree(p)},
		{Label: "Time", Value: cli.FormatPlanMonths(p)},
		{Label: "Total interest", Value: cur.FormatInterest(p), Color: interestColor},
		{Label: "Total paid", Value: cur.Money(p.TotalPaid)},
	}, cw))
	b.WriteString("\n")

	widths := []int{cw / 3, cw - cw/3}
	chartH := 8
	values, labels := balanceSeries(p, a.analysis)
	chart := components.BarChart(values, labels, t.StrategyColor(string(p.Strategy)),
		components.CardInnerWidth(widths[1]), chartH)

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Payoff order", a.payoffOrder(p, components.CardInnerWidth(widths[0])), widths[0]),
		components.ContentCard("Remaining balance", chart, widths[1]),
	}))
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	rows := max(h-used-4, 3) // card border, title and header line
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Schedule  month %d of %d", min(offset+1, len(p.Schedule)), len(p.Schedule)),
		a.scheduleRows(p, offset, rows, components.CardInnerWidth(cw)),
		cw,
	))

	return b.String()
}

func (a App) payoffOrder(p payoff.PlanResult, innerW int) string {
	t := theme.Active
	num := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	name := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	when := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface)

	var b strings.Builder
	for i, ev := range p.PayoffOrder {
		date := payoff.AddMonths(a.analysis.ReferenceDate, ev.Month).Format("Jan 2006")
		right := fmt.Sprintf("mo %d · %s", ev.Month, date)
		nameW := max(innerW-4-len(right), 6)
		fmt.Fprintf(&b, "%s%s %s\n",
			num.Render(fmt.Sprintf("%2d. ", i+1)),
			name.Render(fmt.Sprintf("%-*s", nameW, truncStr(ev.Name, nameW))),
			when.Render(right))
	}

	unpaid := len(a.debts) - len(p.PayoffOrder)
	if !p.Converged && unpaid > 0 {
		b.WriteString(warn.Render(fmt.Sprintf("%d debt(s) never cleared", unpaid)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (a App) scheduleRows(p payoff.PlanResult, offset, limit, innerW int) string {
	t := theme.Active
	cur := a.opts.Currency

	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	cleared := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)

	names := make(map[string]string, len(a.debts))
	for _, d := range a.debts {
		names[d.ID] = d.Name
	}

	const format = "%5s  %-9s %14s %14s %14s  "
	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf(format, "Month", "Date", "Interest", "Paid", "Remaining") + "Cleared"))

	end := min(offset+limit, len(p.Schedule))
	for _, snap := range p.Schedule[offset:end] {
		var clearedNames []string
		for _, id := range snap.Cleared {
			clearedNames = append(clearedNames, names[id])
		}
		row := fmt.Sprintf(format,
			fmt.Sprint(snap.Month),
			payoff.AddMonths(a.analysis.ReferenceDate, snap.Month).Format("Jan 2006"),
			cur.Money(snap.Interest),
			cur.Money(snap.Paid),
			cur.Money(snap.Remaining),
		)
		b.WriteString("\n")
		b.WriteString(cell.Render(row))
		if len(clearedNames) > 0 {
			room := max(innerW-lipgloss.Width(row), 4)
			b.WriteString(cleared.Render(truncStr("✓ "+strings.Join(clearedNames, ", "), room)))
		}
	}
	if end < len(p.Schedule) {
		b.WriteString("\n")
		b.WriteString(dim.Render(fmt.Sprintf("… %d more months (j/k to scroll)", len(p.Schedule)-end)))
	}
	return b.String()
}
