// Package cmd implements the debtburn CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/config"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagDB        string
	flagUser      string
	flagExtra     string
	flagMaxMonths int
	flagAsOf      string
	flagQuiet     bool
	flagJSON      bool
)

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "debtburn",
	Short: "Debt payoff planner",
	Long: "Compare the snowball and avalanche payoff strategies for your debts:\n" +
		"months to debt-free, total interest and the order each debt clears.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runAnalyze,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	pf.StringVar(&flagDB, "db", "", "Debt store: SQLite path or postgres:// URL (env DEBTBURN_DB)")
	pf.StringVarP(&flagUser, "user", "u", "", "Portfolio to use (env DEBTBURN_USER)")
	pf.StringVarP(&flagExtra, "extra", "e", "", "Extra monthly payment on top of all minimums")
	pf.IntVar(&flagMaxMonths, "max-months", 0, "Simulation ceiling in months")
	pf.StringVar(&flagAsOf, "as-of", "", "Reference date for payoff dates (YYYY-MM-DD, default today)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")

	rootCmd.Flags().BoolVar(&flagSave, "save", false, "Record the analysis in history")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if flagMaxMonths < 0 {
		return fmt.Errorf("--max-months must be positive, got %d", flagMaxMonths)
	}
	return nil
}

func progress(format string, args ...any) {
	if flagQuiet || flagJSON {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

func activeUser() string {
	if flagUser != "" {
		return flagUser
	}
	return config.User(cfg)
}

func openStore() (*store.Store, error) {
	dsn := flagDB
	if dsn == "" {
		dsn = config.DSN(cfg)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("opening debt store: %w", err)
	}
	return st, nil
}

func currency() cli.Currency {
	return cli.Currency{Symbol: cfg.General.CurrencySymbol, Decimals: cfg.General.CurrencyDecimals}
}

// extraPayment resolves --extra, falling back to the configured default.
func extraPayment() (money.Amount, error) {
	if flagExtra == "" {
		return cfg.General.DefaultExtra, nil
	}
	v, err := money.Parse(flagExtra)
	if err != nil {
		return money.Zero, fmt.Errorf("--extra: %w", err)
	}
	return v, nil
}

func maxMonths() int {
	if flagMaxMonths > 0 {
		return flagMaxMonths
	}
	return cfg.General.MaxMonths
}

func planOptions(schedule bool) payoff.Options {
	return payoff.Options{
		MaxMonths:      maxMonths(),
		Decimals:       cfg.General.CurrencyDecimals,
		Parallel:       true,
		RecordSchedule: schedule,
	}
}

func referenceDate() (time.Time, error) {
	if flagAsOf == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", flagAsOf, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of: expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}

var errNoDebts = errors.New("no debts")

func printNoDebts() {
	fmt.Println()
	fmt.Printf("  No debts for %q yet.\n", activeUser())
	fmt.Println("  Add one with `debtburn debts add`, import a file with `debtburn debts import`,")
	fmt.Println("  or try the demo portfolio with `debtburn sample`.")
	fmt.Println()
}
