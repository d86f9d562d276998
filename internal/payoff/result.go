package payoff

import (
	"encoding/json"
	"time"

	"github.com/theirongolddev/debtburn/internal/money"
)

// DateLayout renders a debt-free date as "March 2027".
const DateLayout = "January 2006"

// PayoffEvent records the month one debt reached zero.
type PayoffEvent struct {
	DebtID string
	Name   string
	Month  int
}

// MonthSnapshot is one simulated month, kept when Options.RecordSchedule is set.
type MonthSnapshot struct {
	Month     int
	Interest  money.Amount
	Paid      money.Amount
	Payments  map[string]money.Amount
	Balances  map[string]money.Amount
	Remaining money.Amount
	Cleared   []string
}

// PlanResult is the outcome of one strategy run.
//
// When Converged is false TotalMonths and DebtFreeDate are meaningless,
// MonthsSimulated equals the ceiling and TotalInterest is provisional.
type PlanResult struct {
	Strategy        Strategy
	Converged       bool
	TotalMonths     int
	MonthsSimulated int
	DebtFreeDate    time.Time
	TotalInterest   money.Amount
	TotalPaid       money.Amount
	PayoffMonths    map[string]int
	PayoffOrder     []PayoffEvent
	Schedule        []MonthSnapshot
}

// InterestProvisional reports whether TotalInterest stops at the ceiling
// rather than at payoff.
func (p PlanResult) InterestProvisional() bool { return !p.Converged }

// Err returns a *NonConvergentError for a run that hit the ceiling, else nil.
func (p PlanResult) Err() error {
	if p.Converged {
		return nil
	}
	return &NonConvergentError{
		Strategy:            p.Strategy,
		Months:              p.MonthsSimulated,
		ProvisionalInterest: p.TotalInterest,
	}
}

// DebtFreeLabel renders the debt-free date, or "" when the run did not converge.
func (p PlanResult) DebtFreeLabel() string {
	if !p.Converged {
		return ""
	}
	return p.DebtFreeDate.Format(DateLayout)
}

// Analysis compares both strategies over one debt snapshot.
type Analysis struct {
	ReferenceDate              time.Time
	ExtraPayment               money.Amount
	DebtCount                  int
	TotalDebt                  money.Amount
	TotalEMI                   money.Amount
	AverageInterestRate        money.Amount
	Snowball                   PlanResult
	Avalanche                  PlanResult
	InterestSavedWithAvalanche money.Amount
	// MonthsSavedWithAvalanche is only meaningful when both runs converged.
	MonthsSavedWithAvalanche int
	Recommended              Strategy
}

// Plan returns the result for strategy.
func (a Analysis) Plan(s Strategy) PlanResult {
	if s == Avalanche {
		return a.Avalanche
	}
	return a.Snowball
}

type payoffOrderJSON struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MonthsToPayoff int    `json:"months_to_payoff"`
}

type planJSON struct {
	Strategy            Strategy          `json:"strategy"`
	TotalMonths         *int              `json:"total_months"`
	DebtFreeDate        *string           `json:"debt_free_date"`
	TotalInterest       json.Number       `json:"total_interest"`
	PayoffOrder         []payoffOrderJSON `json:"payoff_order"`
	NonConvergent       bool              `json:"non_convergent,omitempty"`
	MonthsSimulated     int               `json:"months_simulated,omitempty"`
	InterestProvisional bool              `json:"interest_provisional,omitempty"`
}

// MarshalJSON emits null months and date for a non-convergent run.
func (p PlanResult) MarshalJSON() ([]byte, error) {
	out := planJSON{
		Strategy:      p.Strategy,
		TotalInterest: number(p.TotalInterest),
		PayoffOrder:   make([]payoffOrderJSON, 0, len(p.PayoffOrder)),
	}
	for _, ev := range p.PayoffOrder {
		out.PayoffOrder = append(out.PayoffOrder, payoffOrderJSON{ID: ev.DebtID, Name: ev.Name, MonthsToPayoff: ev.Month})
	}
	if p.Converged {
		months := p.TotalMonths
		date := p.DebtFreeLabel()
		out.TotalMonths = &months
		out.DebtFreeDate = &date
	} else {
		out.NonConvergent = true
		out.MonthsSimulated = p.MonthsSimulated
		out.InterestProvisional = true
	}
	return json.Marshal(out)
}

type analysisJSON struct {
	TotalDebt                  json.Number `json:"total_debt"`
	TotalEMI                   json.Number `json:"total_emi"`
	AverageInterestRate        json.Number `json:"average_interest_rate"`
	ExtraPayment               json.Number `json:"extra_payment"`
	SnowballAnalysis           PlanResult  `json:"snowball_analysis"`
	AvalancheAnalysis          PlanResult  `json:"avalanche_analysis"`
	InterestSavedWithAvalanche json.Number `json:"interest_saved_with_avalanche"`
	MonthsSavedWithAvalanche   *int        `json:"months_saved_with_avalanche"`
	RecommendedStrategy        Strategy    `json:"recommended_strategy,omitempty"`
}

// MarshalJSON uses the field names the mobile client reads.
func (a Analysis) MarshalJSON() ([]byte, error) {
	out := analysisJSON{
		TotalDebt:                  number(a.TotalDebt),
		TotalEMI:                   number(a.TotalEMI),
		AverageInterestRate:        number(a.AverageInterestRate),
		ExtraPayment:               number(a.ExtraPayment),
		SnowballAnalysis:           a.Snowball,
		AvalancheAnalysis:          a.Avalanche,
		InterestSavedWithAvalanche: number(a.InterestSavedWithAvalanche),
		RecommendedStrategy:        a.Recommended,
	}
	if a.Snowball.Converged && a.Avalanche.Converged {
		m := a.MonthsSavedWithAvalanche
		out.MonthsSavedWithAvalanche = &m
	}
	return json.Marshal(out)
}

func number(a money.Amount) json.Number {
	return json.Number(a.String())
}
