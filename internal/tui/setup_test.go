package tui

import (
	"testing"

	"github.com/theirongolddev/debtburn/internal/config"
)

func TestApplySetup(t *testing.T) {
	cfg, err := ApplySetup(config.DefaultConfig(), SetupValues{
		User:     "  asha ",
		Currency: "USD",
		Extra:    "$1,250.50",
		Theme:    "tokyo-night",
	})
	if err != nil {
		t.Fatalf("ApplySetup: %v", err)
	}
	if cfg.General.User != "asha" {
		t.Errorf("User = %q, want asha", cfg.General.User)
	}
	if cfg.General.CurrencySymbol != "$" || cfg.General.CurrencyDecimals != 2 {
		t.Errorf("currency = %q/%d, want $/2", cfg.General.CurrencySymbol, cfg.General.CurrencyDecimals)
	}
	if got := cfg.General.DefaultExtra.String(); got != "1250.5" {
		t.Errorf("DefaultExtra = %s, want 1250.5", got)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("Theme = %q", cfg.Appearance.Theme)
	}
}

func TestApplySetupKeepsDefaults(t *testing.T) {
	base := config.DefaultConfig()
	cfg, err := ApplySetup(base, SetupValues{Currency: "XYZ", Theme: "nope"})
	if err != nil {
		t.Fatalf("ApplySetup: %v", err)
	}
	if cfg.General.User != base.General.User {
		t.Errorf("blank user replaced default: %q", cfg.General.User)
	}
	if cfg.General.Currency != "INR" {
		t.Errorf("unknown currency changed config: %q", cfg.General.Currency)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("unknown theme = %q, want flexoki-dark", cfg.Appearance.Theme)
	}
	if !cfg.General.DefaultExtra.IsZero() {
		t.Errorf("blank extra = %s, want 0", cfg.General.DefaultExtra)
	}
}

func TestApplySetupRejectsBadExtra(t *testing.T) {
	if _, err := ApplySetup(config.DefaultConfig(), SetupValues{Extra: "lots"}); err == nil {
		t.Error("expected error for unparseable extra")
	}
	if _, err := ApplySetup(config.DefaultConfig(), SetupValues{Extra: "-5"}); err == nil {
		t.Error("expected error for negative extra")
	}
}

func TestValidateExtra(t *testing.T) {
	for _, s := range []string{"", "0", "5000", "₹5,000"} {
		if err := validateExtra(s); err != nil {
			t.Errorf("validateExtra(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"abc", "-1"} {
		if err := validateExtra(s); err == nil {
			t.Errorf("validateExtra(%q) = nil, want error", s)
		}
	}
}
