package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/debtburn/internal/config"
	"github.com/theirongolddev/debtburn/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	path := config.Path()
	if flagConfig != "" {
		path = flagConfig
	}

	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    User:          %s\n", activeUser())
	fmt.Printf("    Currency:      %s (%s, %d decimals)\n",
		cfg.General.Currency, cfg.General.CurrencySymbol, cfg.General.CurrencyDecimals)
	fmt.Printf("    Default extra: %s/mo\n", currency().Money(cfg.General.DefaultExtra))
	fmt.Printf("    Max months:    %d\n", cfg.General.MaxMonths)
	fmt.Println()

	fmt.Println("  [Store]")
	dsn := flagDB
	if dsn == "" {
		dsn = config.DSN(cfg)
	}
	if store.IsPostgres(dsn) {
		fmt.Println("    Driver: postgres")
		fmt.Println("    DSN:    (from DEBTBURN_DB or config, not shown)")
	} else {
		fmt.Println("    Driver: sqlite")
		fmt.Printf("    Path:   %s\n", dsn)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       http://%s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Printf("    Cache TTL:     %ds\n", cfg.Daemon.CacheTTLSec)
	if addr := config.RedisAddr(cfg); addr != "" {
		fmt.Printf("    Redis cache:   %s (db %d)\n", addr, cfg.Daemon.RedisDB)
	} else {
		fmt.Println("    Redis cache:   not configured (in-process cache)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `debtburn setup` to reconfigure.")
	return nil
}
