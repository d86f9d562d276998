package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/store"

	"github.com/spf13/cobra"
)

var flagSave bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare snowball and avalanche payoff plans",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagSave, "save", false, "Record the analysis in history")
	rootCmd.AddCommand(analyzeCmd)
}

// loadPortfolio reads the active user's debts, returning errNoDebts when
// the portfolio is empty.
func loadPortfolio(ctx context.Context, st *store.Store) ([]model.Debt, error) {
	debts, err := st.ListDebts(ctx, activeUser())
	if err != nil {
		return nil, err
	}
	if len(debts) == 0 {
		return nil, errNoDebts
	}
	progress("Loaded %d debts for %s", len(debts), activeUser())
	return debts, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

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

	debts, err := loadPortfolio(ctx, st)
	if errors.Is(err, errNoDebts) {
		printNoDebts()
		return nil
	}
	if err != nil {
		return err
	}

	analysis, err := payoff.Plan(debts, extra, ref, planOptions(false))
	if err != nil {
		return err
	}

	if flagSave {
		rec, err := st.SaveAnalysis(ctx, activeUser(), analysis)
		if err != nil {
			return fmt.Errorf("saving analysis: %w", err)
		}
		progress("Saved analysis %s", rec.ID)
	}

	if flagJSON {
		return printJSON(analysis)
	}

	renderAnalysis(debts, analysis)
	return nil
}

func renderAnalysis(debts []model.Debt, a payoff.Analysis) {
	cur := currency()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DEBT PAYOFF  %s  extra %s/mo", activeUser(), cur.Money(a.ExtraPayment))))
	fmt.Println()

	rows := make([][]string, 0, len(debts)+2)
	for _, d := range debts {
		rows = append(rows, []string{
			d.Name,
			d.Kind.Label(),
			cur.Money(d.Outstanding),
			cli.FormatRate(d.AnnualRate),
			cur.Money(d.MinimumPayment),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", "", cur.Money(a.TotalDebt), cli.FormatRate(a.AverageInterestRate), cur.Money(a.TotalEMI)},
	)
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Portfolio",
		Headers: []string{"Debt", "Type", "Outstanding", "Rate", "EMI"},
		Rows:    rows,
	}))
	fmt.Println()

	first := func(p payoff.PlanResult) string {
		if len(p.PayoffOrder) == 0 {
			return "-"
		}
		return p.PayoffOrder[0].Name
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Strategies",
		Headers: []string{"", "Snowball", "Avalanche"},
		Rows: [][]string{
			{"Debt-free", cli.FormatDebtFree(a.Snowball), cli.FormatDebtFree(a.Avalanche)},
			{"Time", cli.FormatPlanMonths(a.Snowball), cli.FormatPlanMonths(a.Avalanche)},
			{"Total interest", cur.FormatInterest(a.Snowball), cur.FormatInterest(a.Avalanche)},
			{"First cleared", first(a.Snowball), first(a.Avalanche)},
		},
	}))
	fmt.Println()

	fmt.Println("  " + verdictLine(a))
	fmt.Println()

	for _, p := range []payoff.PlanResult{a.Snowball, a.Avalanche} {
		fmt.Printf("  %s\n", cli.Muted(p.Strategy.Label()+" payoff order"))
		fmt.Print(cli.RenderTimeline(p, 36))
		fmt.Println()
	}
}

func verdictLine(a payoff.Analysis) string {
	cur := currency()
	switch {
	case a.Recommended == "":
		return cli.Warn(fmt.Sprintf("Neither strategy clears the debts within %d months. Raise the extra payment.",
			a.Snowball.MonthsSimulated))
	case !a.Snowball.Converged || !a.Avalanche.Converged:
		return cli.Good("Use "+a.Recommended.Label()) + cli.Muted(": the other strategy never finishes at this budget.")
	case a.InterestSavedWithAvalanche.Sign() > 0:
		line := cli.Good("Avalanche saves "+cur.Money(a.InterestSavedWithAvalanche)) + cli.Muted(" in interest")
		if a.MonthsSavedWithAvalanche > 0 {
			line += cli.Muted(fmt.Sprintf(" and finishes %s sooner", cli.FormatMonths(a.MonthsSavedWithAvalanche)))
		}
		return line
	default:
		return cli.Good("Both strategies cost the same") + cli.Muted("; snowball clears individual debts sooner.")
	}
}
