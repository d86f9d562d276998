// Package payoff simulates multi-debt repayment under the snowball and
// avalanche strategies and compares the results.
//
// Plan is pure: it never writes the caller's debts, keeps no state between
// calls and returns identical results for identical input.
package payoff

import (
	"strconv"
	"sync"
	"time"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

// DefaultMaxMonths bounds every run at 100 years.
const DefaultMaxMonths = 1200

// Options tunes a planning call. The zero value is valid.
type Options struct {
	// MaxMonths is the non-convergence ceiling. <= 0 means DefaultMaxMonths.
	MaxMonths int
	// Decimals is the currency's minor-unit places; 0 rounds to whole units.
	Decimals int32
	// Parallel runs the two strategies on separate goroutines.
	Parallel bool
	// RecordSchedule keeps a MonthSnapshot per simulated month.
	RecordSchedule bool
}

func (o Options) maxMonths() int {
	if o.MaxMonths <= 0 {
		return DefaultMaxMonths
	}
	return o.MaxMonths
}

func (o Options) rounder() money.Rounder {
	return money.Rounder{Places: o.Decimals}
}

// Plan validates the input, runs both strategies and returns the comparison.
// Validation failures wrap ErrInvalidInput and no simulation is started.
// A run that hits the ceiling is reported in its PlanResult, not as an error.
func Plan(debts []model.Debt, extra money.Amount, ref time.Time, opts Options) (Analysis, error) {
	if err := Validate(debts, extra, opts); err != nil {
		return Analysis{}, err
	}

	snapshot := model.Clone(debts)
	var snowball, avalanche PlanResult
	if opts.Parallel && len(snapshot) > 0 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			snowball = runStrategy(Snowball, snapshot, extra, ref, opts)
		}()
		go func() {
			defer wg.Done()
			avalanche = runStrategy(Avalanche, snapshot, extra, ref, opts)
		}()
		wg.Wait()
	} else {
		snowball = runStrategy(Snowball, snapshot, extra, ref, opts)
		avalanche = runStrategy(Avalanche, snapshot, extra, ref, opts)
	}

	a := Compare(snapshot, snowball, avalanche)
	a.ReferenceDate = ref
	a.ExtraPayment = extra
	return a, nil
}

// RunStrategy plans a single strategy. It validates like Plan.
func RunStrategy(strategy Strategy, debts []model.Debt, extra money.Amount, ref time.Time, opts Options) (PlanResult, error) {
	if err := Validate(debts, extra, opts); err != nil {
		return PlanResult{}, err
	}
	return runStrategy(strategy, model.Clone(debts), extra, ref, opts), nil
}

func runStrategy(strategy Strategy, debts []model.Debt, extra money.Amount, ref time.Time, opts Options) PlanResult {
	sim := newSimulation(strategy, debts, extra, opts.rounder(), opts.RecordSchedule)
	if len(debts) > 0 {
		sim.run(opts.maxMonths())
	}

	res := PlanResult{
		Strategy:        strategy,
		Converged:       sim.done(),
		MonthsSimulated: sim.month,
		TotalInterest:   sim.interest,
		TotalPaid:       sim.paidTotal,
		PayoffMonths:    sim.payoffMonths(),
		PayoffOrder:     sim.order,
		Schedule:        sim.schedule,
	}
	if res.PayoffOrder == nil {
		res.PayoffOrder = []PayoffEvent{}
	}
	if res.Converged {
		res.TotalMonths = sim.month
		res.DebtFreeDate = AddMonths(ref, sim.month)
	}
	return res
}

// Validate reports the first invalid field as an *InvalidInputError.
func Validate(debts []model.Debt, extra money.Amount, opts Options) error {
	if extra.Sign() < 0 {
		return &InvalidInputError{Field: "extra_payment", Reason: "must not be negative"}
	}
	if opts.Decimals < 0 {
		return &InvalidInputError{Field: "decimals", Reason: "must not be negative"}
	}
	r := opts.rounder()
	seen := make(map[string]bool, len(debts))
	for i, d := range debts {
		if d.ID == "" {
			return &InvalidInputError{Field: "id", Reason: "must not be empty (debt #" + strconv.Itoa(i+1) + ")"}
		}
		if seen[d.ID] {
			return &InvalidInputError{DebtID: d.ID, Field: "id", Reason: "is duplicated"}
		}
		seen[d.ID] = true
		switch {
		case d.Outstanding.Sign() < 0:
			return &InvalidInputError{DebtID: d.ID, Field: "outstanding", Reason: "must not be negative"}
		case d.AnnualRate.Sign() < 0:
			return &InvalidInputError{DebtID: d.ID, Field: "interest_rate", Reason: "must not be negative"}
		case !model.IsPaid(d.Outstanding, r) && d.MinimumPayment.Sign() <= 0:
			return &InvalidInputError{DebtID: d.ID, Field: "emi_amount", Reason: "must be positive while a balance is outstanding"}
		}
	}
	return nil
}

// AddMonths adds n calendar months to t, clamping the day to the end of the
// target month (31 Jan + 1 month = 28/29 Feb).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
