package payoff

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/debtburn/internal/money"
)

var (
	// ErrInvalidInput is wrapped by every validation failure from Plan.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNonConvergent marks a strategy that hit the month ceiling with
	// balances still outstanding.
	ErrNonConvergent = errors.New("plan did not converge")
)

// InvalidInputError describes the first rejected field.
type InvalidInputError struct {
	DebtID string
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.DebtID != "" {
		return fmt.Sprintf("invalid input: debt %q: %s %s", e.DebtID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NonConvergentError reports a strategy that ran out of months.
// ProvisionalInterest is the interest accrued up to the ceiling.
type NonConvergentError struct {
	Strategy            Strategy
	Months              int
	ProvisionalInterest money.Amount
}

func (e *NonConvergentError) Error() string {
	return fmt.Sprintf("%s: balances remain after %d months (provisional interest %s)",
		e.Strategy, e.Months, e.ProvisionalInterest.String())
}

func (e *NonConvergentError) Unwrap() error { return ErrNonConvergent }
