// Package model defines the debt record shared by the planner, the store and
// the presentation layers.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/debtburn/internal/money"
)

// Kind classifies a debt. It is informational and never changes a plan.
type Kind string

const (
	KindCreditCard   Kind = "credit_card"
	KindPersonalLoan Kind = "personal_loan"
	KindEMI          Kind = "emi"
	KindOther        Kind = "other"
)

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{KindCreditCard, KindPersonalLoan, KindEMI, KindOther}
}

// ParseKind accepts the wire form ("credit_card") or a loose spelling
// ("credit card", "Credit-Card"). Empty input maps to KindOther.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if norm == "" {
		return KindOther, nil
	}
	for _, k := range Kinds() {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown debt kind %q", s)
}

// Label returns a human-readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindCreditCard:
		return "Credit Card"
	case KindPersonalLoan:
		return "Personal Loan"
	case KindEMI:
		return "EMI"
	default:
		return "Other"
	}
}

// Debt is one obligation. Outstanding may exceed Principal when upstream data
// has already capitalised interest.
type Debt struct {
	ID                  string       `json:"id" toml:"id"`
	UserID              string       `json:"user_id,omitempty" toml:"user_id,omitempty"`
	Name                string       `json:"name" toml:"name"`
	Kind                Kind         `json:"type" toml:"type"`
	Principal           money.Amount `json:"principal" toml:"principal"`
	Outstanding         money.Amount `json:"outstanding" toml:"outstanding"`
	AnnualRate          money.Amount `json:"interest_rate" toml:"interest_rate"`
	MinimumPayment      money.Amount `json:"emi_amount" toml:"emi_amount"`
	RemainingTermMonths int          `json:"remaining_tenure" toml:"remaining_tenure"`
	CreatedAt           time.Time    `json:"created_at,omitempty" toml:"-"`
}

// IsPaid reports whether balance has been driven to zero, absorbing any
// residue smaller than the currency's rounding epsilon.
func IsPaid(balance money.Amount, r money.Rounder) bool {
	return balance.LessThanOrEqual(r.Epsilon())
}

// MonthlyInterest is one month of interest on balance at annualRate percent,
// rounded half-up to the currency's minor unit.
func MonthlyInterest(balance, annualRate money.Amount, r money.Rounder) money.Amount {
	if annualRate.IsZero() || balance.Sign() <= 0 {
		return money.Zero
	}
	return r.Round(money.MonthlyInterest(balance, annualRate))
}

// Clone returns debts copied into a fresh slice.
func Clone(debts []Debt) []Debt {
	out := make([]Debt, len(debts))
	copy(out, debts)
	return out
}
