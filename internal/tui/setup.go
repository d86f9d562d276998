package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/debtburn/internal/config"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup wizard.
type SetupValues struct {
	User       string
	Currency   string
	Extra      string
	Theme      string
	LoadSample bool
}

type currencyOption struct {
	code     string
	symbol   string
	decimals int32
}

var currencies = []currencyOption{
	{"INR", "₹", 0},
	{"USD", "$", 2},
	{"EUR", "€", 2},
	{"GBP", "£", 2},
}

func currencyByCode(code string) (currencyOption, bool) {
	for _, c := range currencies {
		if c.code == code {
			return c, true
		}
	}
	return currencyOption{}, false
}

// SetupDefaults seeds wizard answers from an existing config.
func SetupDefaults(cfg config.Config) SetupValues {
	return SetupValues{
		User:     cfg.General.User,
		Currency: cfg.General.Currency,
		Extra:    cfg.General.DefaultExtra.String(),
		Theme:    cfg.Appearance.Theme,
	}
}

func validateExtra(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := money.Parse(s)
	if err != nil {
		return errors.New("enter an amount like 5000")
	}
	if v.Sign() < 0 {
		return errors.New("extra payment cannot be negative")
	}
	return nil
}

// NewSetupForm builds the first-run wizard. Answers are written to vals.
// The sample-portfolio question is only asked when debtCount is zero.
func NewSetupForm(debtCount int, vals *SetupValues) *huh.Form {
	currencyOpts := make([]huh.Option[string], len(currencies))
	for i, c := range currencies {
		currencyOpts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", c.code, c.symbol), c.code)
	}
	themeOpts := huh.NewOptions(theme.Names()...)

	intro := "Plan your way out of debt with the snowball and avalanche methods."
	if debtCount > 0 {
		intro = fmt.Sprintf("Found %d debts in your portfolio.", debtCount)
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to debtburn").
				Description(intro),
			huh.NewInput().
				Title("Portfolio name").
				Description("Debts are stored per user; most people keep the default.").
				Value(&vals.User).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Currency").
				Options(currencyOpts...).
				Value(&vals.Currency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Extra monthly payment").
				Description("Paid on top of all minimums every month. Leave blank for none.").
				Placeholder("0").
				Value(&vals.Extra).
				Validate(validateExtra),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	}

	if debtCount == 0 {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("Load a sample portfolio?").
				Description("A credit card, a personal loan and a phone EMI to explore with.").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.LoadSample),
		))
	}

	return huh.NewForm(groups...).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}

// ApplySetup folds wizard answers into cfg.
func ApplySetup(cfg config.Config, vals SetupValues) (config.Config, error) {
	if u := strings.TrimSpace(vals.User); u != "" {
		cfg.General.User = u
	}

	if c, ok := currencyByCode(vals.Currency); ok {
		cfg.General.Currency = c.code
		cfg.General.CurrencySymbol = c.symbol
		cfg.General.CurrencyDecimals = c.decimals
	}

	extra := money.Zero
	if strings.TrimSpace(vals.Extra) != "" {
		v, err := money.Parse(vals.Extra)
		if err != nil {
			return cfg, fmt.Errorf("extra payment: %w", err)
		}
		extra = v
	}
	cfg.General.DefaultExtra = extra

	if vals.Theme != "" {
		cfg.Appearance.Theme = theme.ByName(vals.Theme).Name
	}

	return cfg, cfg.Validate()
}
