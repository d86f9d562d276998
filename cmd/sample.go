package cmd

import (
	"fmt"

	"github.com/theirongolddev/debtburn/internal/source"

	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Load a demo portfolio (credit card, personal loan, phone EMI)",
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().BoolVar(&flagReplace, "replace", false, "Replace the portfolio instead of merging")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	user := activeUser()
	n, err := st.ImportDebts(cmd.Context(), user, source.SampleDebts(user), flagReplace)
	if err != nil {
		return err
	}
	fmt.Printf("  Loaded %d sample debts into %q\n", n, user)
	fmt.Println("  Run `debtburn` to compare strategies, or `debtburn tui` to explore.")
	return nil
}
