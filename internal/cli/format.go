// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
)

// Currency controls how amounts are printed.
type Currency struct {
	Symbol   string
	Decimals int32
}

// DefaultCurrency prints whole rupees.
var DefaultCurrency = Currency{Symbol: "₹", Decimals: 0}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	return groupDigits(s)
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}
	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// Money formats an amount with the currency symbol and thousands separators.
// e.g., 156000 -> "₹156,000", -233 -> "-₹233"
func (c Currency) Money(a money.Amount) string {
	sign := ""
	if a.Sign() < 0 {
		sign = "-"
		a = a.Neg()
	}
	fixed := a.StringFixed(c.Decimals)
	intPart, frac, hasFrac := strings.Cut(fixed, ".")
	out := sign + c.Symbol + groupDigits(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// Delta formats a signed amount with an explicit sign.
func (c Currency) Delta(a money.Amount) string {
	if a.Sign() >= 0 {
		return "+" + c.Money(a)
	}
	return c.Money(a)
}

// FormatRate formats an annual percentage rate.
// e.g., 36 -> "36%", 15.02 -> "15.02%"
func FormatRate(rate money.Amount) string {
	return rate.String() + "%"
}

// FormatMonths formats a month count.
// e.g., 5 -> "5 mo", 23 -> "1y 11m", 24 -> "2y"
func FormatMonths(n int) string {
	if n < 12 {
		return fmt.Sprintf("%d mo", n)
	}
	years, months := n/12, n%12
	if months == 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dy %dm", years, months)
}

// FormatPlanMonths formats months to debt-free, or the ceiling that was hit.
func FormatPlanMonths(p payoff.PlanResult) string {
	if !p.Converged {
		return fmt.Sprintf("never (>%d mo)", p.MonthsSimulated)
	}
	return FormatMonths(p.TotalMonths)
}

// FormatDebtFree formats the debt-free date, or "not reached".
func FormatDebtFree(p payoff.PlanResult) string {
	if !p.Converged {
		return "not reached"
	}
	return p.DebtFreeLabel()
}

// FormatInterest formats total interest, marking provisional totals.
func (c Currency) FormatInterest(p payoff.PlanResult) string {
	s := c.Money(p.TotalInterest)
	if p.InterestProvisional() {
		s += " (provisional)"
	}
	return s
}
