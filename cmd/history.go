package cmd

import (
	"fmt"

	"github.com/theirongolddev/debtburn/internal/cli"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show analyses saved with --save",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "Number of analyses to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.RecentAnalyses(cmd.Context(), activeUser(), flagHistoryLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		payloads := make([]any, len(records))
		for i, r := range records {
			payloads[i] = map[string]any{
				"id":         r.ID,
				"created_at": r.CreatedAt,
				"analysis":   r.Payload,
			}
		}
		return printJSON(payloads)
	}

	if len(records) == 0 {
		fmt.Println("\n  No saved analyses. Run `debtburn analyze --save` to record one.")
		return nil
	}

	cur := currency()
	months := func(p *int) string {
		if p == nil {
			return "never"
		}
		return cli.FormatMonths(*p)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		pick := r.Recommended.Label()
		if pick == "" {
			pick = "-"
		}
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			cur.Money(r.TotalDebt),
			cur.Money(r.ExtraPayment),
			months(r.SnowballMonths),
			months(r.AvalancheMonths),
			cur.Money(r.InterestSaved),
			pick,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("History  %s", activeUser()),
		Headers: []string{"Saved", "Debt", "Extra", "Snowball", "Avalanche", "Saved w/ aval.", "Pick"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
