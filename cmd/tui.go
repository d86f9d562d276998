package cmd

import (
	"fmt"

	"github.com/theirongolddev/debtburn/internal/config"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/tui"
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagStep string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive payoff dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagStep, "step", "1000", "Extra-payment increment for the +/- keys")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	extra, err := extraPayment()
	if err != nil {
		return err
	}
	step, err := money.Parse(flagStep)
	if err != nil {
		return fmt.Errorf("--step: %w", err)
	}

	dsn := flagDB
	if dsn == "" {
		dsn = config.DSN(cfg)
	}

	app := tui.NewApp(tui.Options{
		DSN:       dsn,
		User:      activeUser(),
		Extra:     extra,
		Step:      step,
		MaxMonths: maxMonths(),
		Currency:  currency(),
		Setup:     !config.Exists() && flagConfig == "",
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
