package payoff

import (
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

// simulation is the private working state of one strategy run. The caller's
// debts are never written; balances is a copy.
type simulation struct {
	strategy Strategy
	debts    []model.Debt
	rounder  money.Rounder

	// budget is fixed for the whole run: the minimums of every debt unpaid at
	// month 0 plus the extra payment. As debts clear, their minimums stay in
	// the budget and cascade to the next debt in order.
	budget money.Amount

	month       int
	balances    map[string]money.Amount
	interest    money.Amount
	paidTotal   money.Amount
	payoffMonth map[string]int
	order       []PayoffEvent

	record   bool
	schedule []MonthSnapshot
}

func newSimulation(strategy Strategy, debts []model.Debt, extra money.Amount, r money.Rounder, record bool) *simulation {
	s := &simulation{
		strategy:    strategy,
		debts:       debts,
		rounder:     r,
		budget:      extra,
		balances:    make(map[string]money.Amount, len(debts)),
		interest:    money.Zero,
		paidTotal:   money.Zero,
		payoffMonth: make(map[string]int, len(debts)),
		record:      record,
	}
	for _, d := range debts {
		if model.IsPaid(d.Outstanding, r) {
			s.balances[d.ID] = money.Zero
			s.payoffMonth[d.ID] = 0
			continue
		}
		s.balances[d.ID] = d.Outstanding
		s.budget = s.budget.Add(d.MinimumPayment)
	}
	return s
}

func (s *simulation) done() bool {
	return len(s.payoffMonth) == len(s.debts)
}

func (s *simulation) unpaid() []model.Debt {
	out := make([]model.Debt, 0, len(s.debts))
	for _, d := range s.debts {
		if _, paid := s.payoffMonth[d.ID]; !paid {
			out = append(out, d)
		}
	}
	return out
}

// step advances every unpaid debt by one month.
func (s *simulation) step() {
	s.month++
	active := s.unpaid()

	var payments map[string]money.Amount
	if s.record {
		payments = make(map[string]money.Amount, len(active))
	}
	pay := func(id string, amt money.Amount) {
		s.balances[id] = s.balances[id].Sub(amt)
		s.paidTotal = s.paidTotal.Add(amt)
		if payments != nil {
			payments[id] = payments[id].Add(amt)
		}
	}

	// Statement balance first: interest capitalises before any payment.
	monthInterest := money.Zero
	for _, d := range active {
		i := model.MonthlyInterest(s.balances[d.ID], d.AnnualRate, s.rounder)
		s.balances[d.ID] = s.balances[d.ID].Add(i)
		monthInterest = monthInterest.Add(i)
	}

	// Each debt takes its own minimum; whatever it cannot absorb becomes surplus.
	committed := money.Zero
	surplus := money.Zero
	for _, d := range active {
		committed = committed.Add(d.MinimumPayment)
		amt := money.Min(d.MinimumPayment, s.balances[d.ID])
		pay(d.ID, amt)
		surplus = surplus.Add(d.MinimumPayment.Sub(amt))
	}
	// Extra payment plus minimums freed by debts cleared in earlier months.
	surplus = surplus.Add(s.budget.Sub(committed))

	if surplus.Sign() > 0 {
		var open []model.Debt
		for _, d := range active {
			if !model.IsPaid(s.balances[d.ID], s.rounder) {
				open = append(open, d)
			}
		}
		for _, id := range Order(s.strategy, open, s.balances) {
			if surplus.Sign() <= 0 {
				break
			}
			amt := money.Min(surplus, s.balances[id])
			pay(id, amt)
			surplus = surplus.Sub(amt)
		}
	}

	var cleared []string
	for _, d := range active {
		if !model.IsPaid(s.balances[d.ID], s.rounder) {
			continue
		}
		s.balances[d.ID] = money.Zero
		s.payoffMonth[d.ID] = s.month
		s.order = append(s.order, PayoffEvent{DebtID: d.ID, Name: d.Name, Month: s.month})
		cleared = append(cleared, d.ID)
	}

	s.interest = s.interest.Add(monthInterest)

	if s.record {
		s.schedule = append(s.schedule, s.snapshot(monthInterest, payments, cleared))
	}
}

func (s *simulation) snapshot(interest money.Amount, payments map[string]money.Amount, cleared []string) MonthSnapshot {
	balances := make(map[string]money.Amount, len(s.balances))
	remaining := money.Zero
	paid := money.Zero
	for id, b := range s.balances {
		balances[id] = b
		remaining = remaining.Add(b)
	}
	for _, p := range payments {
		paid = paid.Add(p)
	}
	return MonthSnapshot{
		Month:     s.month,
		Interest:  interest,
		Paid:      paid,
		Payments:  payments,
		Balances:  balances,
		Remaining: remaining,
		Cleared:   cleared,
	}
}

// run steps until every debt is paid or maxMonths is reached.
func (s *simulation) run(maxMonths int) {
	for !s.done() && s.month < maxMonths {
		s.step()
	}
}

func (s *simulation) payoffMonths() map[string]int {
	out := make(map[string]int, len(s.payoffMonth))
	for id, m := range s.payoffMonth {
		out[id] = m
	}
	return out
}
