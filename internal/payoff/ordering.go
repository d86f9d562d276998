package payoff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

// Strategy selects which debt receives surplus payment capacity first.
type Strategy string

const (
	// Snowball pays the smallest current balance first.
	Snowball Strategy = "snowball"
	// Avalanche pays the highest interest rate first.
	Avalanche Strategy = "avalanche"
)

// Strategies returns both strategies in report order.
func Strategies() []Strategy {
	return []Strategy{Snowball, Avalanche}
}

// ParseStrategy parses a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Snowball:
		return Snowball, nil
	case Avalanche:
		return Avalanche, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want snowball or avalanche)", s)
}

// Label returns the display name.
func (s Strategy) Label() string {
	switch s {
	case Snowball:
		return "Snowball"
	case Avalanche:
		return "Avalanche"
	}
	return string(s)
}

// Order ranks debts for surplus allocation under strategy using the current
// balances. It holds no state and is called once per simulated month, so
// snowball follows balances as they cross over. Ties are deterministic:
//
//	snowball:  balance asc, id asc
//	avalanche: rate desc, balance desc, id asc
func Order(strategy Strategy, debts []model.Debt, balances map[string]money.Amount) []string {
	ranked := model.Clone(debts)
	bal := func(d model.Debt) money.Amount {
		if b, ok := balances[d.ID]; ok {
			return b
		}
		return d.Outstanding
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ba, bb := bal(a), bal(b)
		if strategy == Avalanche {
			if c := a.AnnualRate.Cmp(b.AnnualRate); c != 0 {
				return c > 0
			}
			if c := ba.Cmp(bb); c != 0 {
				return c > 0
			}
			return a.ID < b.ID
		}
		if c := ba.Cmp(bb); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	ids := make([]string, len(ranked))
	for i, d := range ranked {
		ids[i] = d.ID
	}
	return ids
}
