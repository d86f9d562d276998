package model

import (
	"testing"

	"github.com/theirongolddev/debtburn/internal/money"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"credit_card", KindCreditCard, false},
		{"Credit Card", KindCreditCard, false},
		{"personal-loan", KindPersonalLoan, false},
		{"EMI", KindEMI, false},
		{"", KindOther, false},
		{"mortgage", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseKind(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthlyInterest(t *testing.T) {
	whole := money.Rounder{}
	cents := money.Rounder{Places: 2}
	tests := []struct {
		name    string
		balance string
		rate    string
		r       money.Rounder
		want    string
	}{
		{"24 percent", "10000", "24", whole, "200"},
		{"zero rate", "1200", "0", whole, "0"},
		{"half rounds up", "50", "12", whole, "1"},   // 0.5
		{"below half", "49", "12", whole, "0"},       // 0.49
		{"minor unit", "1234.56", "18", cents, "18.52"}, // 18.5184
		{"paid balance", "0", "36", whole, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyInterest(money.MustParse(tt.balance), money.MustParse(tt.rate), tt.r)
			if !got.Equal(money.MustParse(tt.want)) {
				t.Errorf("MonthlyInterest(%s, %s) = %s, want %s", tt.balance, tt.rate, got, tt.want)
			}
		})
	}
}

func TestIsPaid(t *testing.T) {
	r := money.Rounder{}
	if !IsPaid(money.MustParse("0.4"), r) {
		t.Error("0.4 should count as paid for a whole-unit currency")
	}
	if IsPaid(money.MustParse("1"), r) {
		t.Error("1 should not count as paid")
	}
	if !IsPaid(money.MustParse("-3"), r) {
		t.Error("negative balance should count as paid")
	}
}
