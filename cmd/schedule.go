package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"

	"github.com/spf13/cobra"
)

var (
	flagStrategy string
	flagMonths   int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Month-by-month payment schedule for one strategy",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&flagStrategy, "strategy", "s", "avalanche", "snowball or avalanche")
	scheduleCmd.Flags().IntVar(&flagMonths, "months", 0, "Show at most this many months (0 = all)")
	rootCmd.AddCommand(scheduleCmd)
}

type scheduleRowJSON struct {
	Month     int                     `json:"month"`
	Date      string                  `json:"date"`
	Interest  money.Amount            `json:"interest"`
	Paid      money.Amount            `json:"paid"`
	Remaining money.Amount            `json:"remaining"`
	Payments  map[string]money.Amount `json:"payments"`
	Cleared   []string                `json:"cleared,omitempty"`
}

type scheduleJSON struct {
	Plan     payoff.PlanResult `json:"plan"`
	Schedule []scheduleRowJSON `json:"schedule"`
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	strategy, err := payoff.ParseStrategy(flagStrategy)
	if err != nil {
		return err
	}
	extra, err := extraPayment()
	if err != nil {
		return err
	}
	ref, err := referenceDate()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	debts, err := loadPortfolio(cmd.Context(), st)
	if errors.Is(err, errNoDebts) {
		printNoDebts()
		return nil
	}
	if err != nil {
		return err
	}

	plan, err := payoff.RunStrategy(strategy, debts, extra, ref, planOptions(true))
	if err != nil {
		return err
	}

	rows := plan.Schedule
	if flagMonths > 0 && len(rows) > flagMonths {
		rows = rows[:flagMonths]
	}

	if flagJSON {
		out := scheduleJSON{Plan: plan, Schedule: make([]scheduleRowJSON, len(rows))}
		for i, r := range rows {
			out.Schedule[i] = scheduleRowJSON{
				Month:     r.Month,
				Date:      payoff.AddMonths(ref, r.Month).Format(payoff.DateLayout),
				Interest:  r.Interest,
				Paid:      r.Paid,
				Remaining: r.Remaining,
				Payments:  r.Payments,
				Cleared:   r.Cleared,
			}
		}
		return printJSON(out)
	}

	cur := currency()
	names := make(map[string]string, len(debts))
	for _, d := range debts {
		names[d.ID] = d.Name
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s SCHEDULE  extra %s/mo", strings.ToUpper(strategy.Label()), cur.Money(extra))))
	fmt.Println()

	tableRows := make([][]string, 0, len(rows))
	balances := make([]float64, 0, len(rows))
	for _, r := range rows {
		var cleared []string
		for _, id := range r.Cleared {
			cleared = append(cleared, names[id])
		}
		tableRows = append(tableRows, []string{
			fmt.Sprint(r.Month),
			payoff.AddMonths(ref, r.Month).Format("Jan 2006"),
			cur.Money(r.Interest),
			cur.Money(r.Paid),
			cur.Money(r.Remaining),
			strings.Join(cleared, ", "),
		})
		balances = append(balances, r.Remaining.InexactFloat64())
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Date", "Interest", "Paid", "Remaining", "Cleared"},
		Rows:    tableRows,
	}))
	if len(rows) < len(plan.Schedule) {
		fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("… %d more months", len(plan.Schedule)-len(rows))))
	}
	fmt.Println()

	fmt.Printf("  Remaining  %s\n", cli.RenderSparkline(balances))
	fmt.Printf("  Debt-free  %s (%s)\n", cli.FormatDebtFree(plan), cli.FormatPlanMonths(plan))
	fmt.Printf("  Interest   %s\n", cur.FormatInterest(plan))
	fmt.Println()

	if err := plan.Err(); err != nil {
		fmt.Printf("  %s\n\n", cli.Warn(err.Error()))
	}
	return nil
}
