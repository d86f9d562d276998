package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/tui/components"
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	an := a.analysis
	cur := a.opts.Currency

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Debts", Value: strconv.Itoa(an.DebtCount)},
		{Label: "Total debt", Value: cur.Money(an.TotalDebt)},
		{
			Label: "Monthly budget",
			Value: cur.Money(an.TotalEMI.Add(an.ExtraPayment)),
			Delta: "EMIs " + cur.Money(an.TotalEMI) + " + extra " + cur.Money(an.ExtraPayment),
		},
		{Label: "Avg rate", Value: cli.FormatRate(an.AverageInterestRate), Delta: "balance weighted"},
	}, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.strategyCard(an.Snowball, widths[0]),
		a.strategyCard(an.Avalanche, widths[1]),
	}))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Verdict", a.verdict(), cw))

	return b.String()
}

func (a App) strategyCard(p payoff.PlanResult, outerW int) string {
	t := theme.Active
	cur := a.opts.Currency
	innerW := components.CardInnerWidth(outerW)

	title := p.Strategy.Label()
	if a.analysis.Recommended == p.Strategy {
		title += " ★ recommended"
	}

	interestColor := t.TextPrimary
	if p.InterestProvisional() {
		interestColor = t.Warn
	}
	monthsColor := t.TextPrimary
	if !p.Converged {
		monthsColor = t.Bad
	}

	first := "none"
	if len(p.PayoffOrder) > 0 {
		ev := p.PayoffOrder[0]
		first = fmt.Sprintf("%s (%s)", truncStr(ev.Name, 20), cli.FormatMonths(ev.Month))
	}

	var b strings.Builder
	b.WriteString(kvLine("Debt-free", cli.FormatDebtFree(p), monthsColor))
	b.WriteString(kvLine("Time", cli.FormatPlanMonths(p), monthsColor))
	b.WriteString(kvLine("Interest", cur.FormatInterest(p), interestColor))
	b.WriteString(kvLine("First cleared", first, t.TextPrimary))

	values, _ := balanceSeries(p, a.analysis)
	if len(values) > 0 {
		values, _ = components.Downsample(values, nil, innerW)
		b.WriteString("\n")
		b.WriteString(components.Sparkline(values, t.StrategyColor(string(p.Strategy))))
	}

	return components.ContentCard(title, b.String(), outerW)
}

func (a App) verdict() string {
	t := theme.Active
	an := a.analysis
	cur := a.opts.Currency

	good := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface).Bold(true)
	bad := lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	switch {
	case !an.Snowball.Converged && !an.Avalanche.Converged:
		return bad.Render(fmt.Sprintf("Neither plan clears the debts within %d months.", an.Snowball.MonthsSimulated)) + "\n" +
			muted.Render("Monthly payments barely cover interest. Raise the extra payment with +.")
	case !an.Snowball.Converged || !an.Avalanche.Converged:
		return good.Render("Use "+an.Recommended.Label()+".") + " " +
			muted.Render("The other strategy never finishes at this budget.")
	case an.InterestSavedWithAvalanche.Sign() > 0:
		line := good.Render("Avalanche saves "+cur.Money(an.InterestSavedWithAvalanche)+" in interest") +
			muted.Render(" over snowball")
		if an.MonthsSavedWithAvalanche > 0 {
			line += muted.Render(fmt.Sprintf(" and finishes %s sooner", cli.FormatMonths(an.MonthsSavedWithAvalanche)))
		}
		return line + muted.Render(".")
	default:
		return good.Render("Both strategies cost the same.") + " " +
			muted.Render("Snowball clears individual debts sooner, which keeps momentum.")
	}
}

func kvLine(label, value string, valueColor lipgloss.Color) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(valueColor).Background(t.Surface)
	return labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(value) + "\n"
}

// balanceSeries returns total remaining balance per simulated month with
// short date labels.
func balanceSeries(p payoff.PlanResult, an payoff.Analysis) ([]float64, []string) {
	if len(p.Schedule) == 0 {
		return nil, nil
	}
	values := make([]float64, 0, len(p.Schedule)+1)
	labels := make([]string, 0, len(p.Schedule)+1)

	values = append(values, an.TotalDebt.InexactFloat64())
	labels = append(labels, an.ReferenceDate.Format("Jan 06"))
	for _, snap := range p.Schedule {
		values = append(values, snap.Remaining.InexactFloat64())
		labels = append(labels, payoff.AddMonths(an.ReferenceDate, snap.Month).Format("Jan 06"))
	}
	return values, labels
}
