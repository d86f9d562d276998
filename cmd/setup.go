package cmd

import (
	"fmt"

	"github.com/theirongolddev/debtburn/internal/config"
	"github.com/theirongolddev/debtburn/internal/source"
	"github.com/theirongolddev/debtburn/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.DebtCount(cmd.Context(), activeUser())
	if err != nil {
		return err
	}

	vals := tui.SetupDefaults(cfg)
	if err := tui.NewSetupForm(count, &vals).Run(); err != nil {
		return err
	}

	updated, err := tui.ApplySetup(cfg, vals)
	if err != nil {
		return err
	}

	path := config.Path()
	if flagConfig != "" {
		path = flagConfig
	}
	if err := config.SaveFile(path, updated); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cfg = updated

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)

	if vals.LoadSample {
		user := config.User(cfg)
		n, err := st.ImportDebts(cmd.Context(), user, source.SampleDebts(user), false)
		if err != nil {
			return err
		}
		fmt.Printf("  Loaded %d sample debts into %q\n", n, user)
	}

	fmt.Println("  Run `debtburn setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
