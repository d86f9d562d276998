package payoff

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

var refDate = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func debt(id, outstanding, rate, minimum string) model.Debt {
	return model.Debt{
		ID:             id,
		Name:           "Debt " + id,
		Kind:           model.KindOther,
		Principal:      money.MustParse(outstanding),
		Outstanding:    money.MustParse(outstanding),
		AnnualRate:     money.MustParse(rate),
		MinimumPayment: money.MustParse(minimum),
	}
}

func twoDebts() []model.Debt {
	return []model.Debt{
		debt("A", "10000", "24", "500"),
		debt("B", "5000", "12", "300"),
	}
}

func sampleDebts() []model.Debt {
	return []model.Debt{
		debt("hdfc", "42000", "36", "5000"),
		debt("pl", "156000", "14", "8500"),
		debt("iphone", "48000", "0", "8000"),
	}
}

func mustPlan(t *testing.T, debts []model.Debt, extra string, opts Options) Analysis {
	t.Helper()
	a, err := Plan(debts, money.MustParse(extra), refDate, opts)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return a
}

func assertAmount(t *testing.T, label string, got money.Amount, want string) {
	t.Helper()
	if !got.Equal(money.MustParse(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func TestPlanTwoDebts(t *testing.T) {
	tests := []struct {
		extra         string
		snowMonths    int
		snowInterest  string
		avaMonths     int
		avaInterest   string
		saved         string
		snowFirstPaid string
		avaFirstPaid  string
	}{
		{"0", 23, "3292", 23, "3292", "0", "B", "B"},
		{"200", 18, "2624", 18, "2391", "233", "B", "A"},
		{"1000", 10, "1431", 9, "1189", "242", "B", "A"},
	}
	for _, tt := range tests {
		t.Run("extra="+tt.extra, func(t *testing.T) {
			a := mustPlan(t, twoDebts(), tt.extra, Options{})

			if a.Snowball.TotalMonths != tt.snowMonths {
				t.Errorf("snowball months = %d, want %d", a.Snowball.TotalMonths, tt.snowMonths)
			}
			if a.Avalanche.TotalMonths != tt.avaMonths {
				t.Errorf("avalanche months = %d, want %d", a.Avalanche.TotalMonths, tt.avaMonths)
			}
			assertAmount(t, "snowball interest", a.Snowball.TotalInterest, tt.snowInterest)
			assertAmount(t, "avalanche interest", a.Avalanche.TotalInterest, tt.avaInterest)
			assertAmount(t, "interest saved", a.InterestSavedWithAvalanche, tt.saved)

			if a.Avalanche.TotalInterest.GreaterThan(a.Snowball.TotalInterest) {
				t.Errorf("avalanche interest %s exceeds snowball %s", a.Avalanche.TotalInterest, a.Snowball.TotalInterest)
			}
			if a.InterestSavedWithAvalanche.Sign() < 0 {
				t.Errorf("interest saved = %s, want >= 0", a.InterestSavedWithAvalanche)
			}
			if got := a.Snowball.PayoffOrder[0].DebtID; got != tt.snowFirstPaid {
				t.Errorf("snowball first payoff = %s, want %s", got, tt.snowFirstPaid)
			}
			if got := a.Avalanche.PayoffOrder[0].DebtID; got != tt.avaFirstPaid {
				t.Errorf("avalanche first payoff = %s, want %s", got, tt.avaFirstPaid)
			}
		})
	}
}

func TestPlanSummary(t *testing.T) {
	a := mustPlan(t, twoDebts(), "0", Options{})
	assertAmount(t, "total debt", a.TotalDebt, "15000")
	assertAmount(t, "total emi", a.TotalEMI, "800")
	// (10000*24 + 5000*12) / 15000 = 20
	assertAmount(t, "average rate", a.AverageInterestRate, "20")

	s := mustPlan(t, sampleDebts(), "0", Options{})
	// (42000*36 + 156000*14 + 48000*0) / 246000 = 15.024...
	assertAmount(t, "sample average rate", s.AverageInterestRate, "15.02")
	assertAmount(t, "sample total emi", s.TotalEMI, "21500")
}

func TestPlanSingleZeroRateDebt(t *testing.T) {
	a := mustPlan(t, []model.Debt{debt("x", "1200", "0", "100")}, "0", Options{})
	for _, p := range []PlanResult{a.Snowball, a.Avalanche} {
		if !p.Converged {
			t.Fatalf("%s did not converge", p.Strategy)
		}
		if p.TotalMonths != 12 {
			t.Errorf("%s months = %d, want 12", p.Strategy, p.TotalMonths)
		}
		assertAmount(t, string(p.Strategy)+" interest", p.TotalInterest, "0")
		if got := p.DebtFreeLabel(); got != "January 2026" {
			t.Errorf("%s debt-free = %q, want January 2026", p.Strategy, got)
		}
	}
}

func TestPlanSingleDebtConsistency(t *testing.T) {
	// 5000 at 12% paying 300 needs 19 months on its own.
	a := mustPlan(t, []model.Debt{debt("x", "5000", "12", "300")}, "0", Options{})
	if a.Snowball.TotalMonths < 19 {
		t.Errorf("snowball months = %d, want >= 19", a.Snowball.TotalMonths)
	}
	if a.Snowball.TotalMonths != a.Avalanche.TotalMonths {
		t.Errorf("single debt strategies disagree: %d vs %d", a.Snowball.TotalMonths, a.Avalanche.TotalMonths)
	}
	assertAmount(t, "interest", a.Snowball.TotalInterest, "498")
}

func TestPlanNonConvergent(t *testing.T) {
	a := mustPlan(t, []model.Debt{debt("x", "10000", "36", "1")}, "0", Options{})
	for _, p := range []PlanResult{a.Snowball, a.Avalanche} {
		if p.Converged {
			t.Fatalf("%s converged, want non-convergent", p.Strategy)
		}
		if p.MonthsSimulated != DefaultMaxMonths {
			t.Errorf("%s months simulated = %d, want %d", p.Strategy, p.MonthsSimulated, DefaultMaxMonths)
		}
		if !p.InterestProvisional() {
			t.Errorf("%s interest should be provisional", p.Strategy)
		}
		if p.TotalInterest.Sign() <= 0 {
			t.Errorf("%s provisional interest = %s, want > 0", p.Strategy, p.TotalInterest)
		}
		err := p.Err()
		if !errors.Is(err, ErrNonConvergent) {
			t.Fatalf("%s Err() = %v, want ErrNonConvergent", p.Strategy, err)
		}
		var nc *NonConvergentError
		if !errors.As(err, &nc) || nc.Months != DefaultMaxMonths {
			t.Errorf("%s Err() = %#v", p.Strategy, err)
		}
	}
	if a.Recommended != "" {
		t.Errorf("recommended = %q, want none", a.Recommended)
	}
}

func TestPlanCustomCeiling(t *testing.T) {
	a := mustPlan(t, twoDebts(), "0", Options{MaxMonths: 12})
	if a.Snowball.Converged || a.Snowball.MonthsSimulated != 12 {
		t.Errorf("snowball converged=%v simulated=%d, want false/12", a.Snowball.Converged, a.Snowball.MonthsSimulated)
	}
	if !a.Snowball.DebtFreeDate.IsZero() {
		t.Errorf("non-convergent plan has debt-free date %v", a.Snowball.DebtFreeDate)
	}
}

func TestPlanEmpty(t *testing.T) {
	for _, debts := range [][]model.Debt{nil, {}} {
		a := mustPlan(t, debts, "500", Options{})
		assertAmount(t, "total debt", a.TotalDebt, "0")
		assertAmount(t, "total emi", a.TotalEMI, "0")
		assertAmount(t, "average rate", a.AverageInterestRate, "0")
		for _, p := range []PlanResult{a.Snowball, a.Avalanche} {
			if !p.Converged || p.TotalMonths != 0 {
				t.Errorf("%s converged=%v months=%d, want true/0", p.Strategy, p.Converged, p.TotalMonths)
			}
			if !p.DebtFreeDate.Equal(refDate) {
				t.Errorf("%s debt-free = %v, want %v", p.Strategy, p.DebtFreeDate, refDate)
			}
			assertAmount(t, "interest", p.TotalInterest, "0")
		}
	}
}

func TestPlanAlreadyPaidDebt(t *testing.T) {
	debts := []model.Debt{
		debt("done", "0", "18", "0"),
		debt("x", "1200", "0", "100"),
	}
	a := mustPlan(t, debts, "0", Options{})
	if a.Snowball.TotalMonths != 12 {
		t.Errorf("months = %d, want 12", a.Snowball.TotalMonths)
	}
	if m, ok := a.Snowball.PayoffMonths["done"]; !ok || m != 0 {
		t.Errorf("payoff month for paid debt = %d (present %v), want 0", m, ok)
	}
}

func TestPlanInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		debts []model.Debt
		extra string
		field string
	}{
		{"negative extra", twoDebts(), "-1", "extra_payment"},
		{"negative outstanding", []model.Debt{debt("x", "-5", "10", "100")}, "0", "outstanding"},
		{"negative rate", []model.Debt{debt("x", "500", "-1", "100")}, "0", "interest_rate"},
		{"zero minimum", []model.Debt{debt("x", "500", "10", "0")}, "0", "emi_amount"},
		{"negative minimum", []model.Debt{debt("x", "500", "10", "-10")}, "0", "emi_amount"},
		{"empty id", []model.Debt{debt("", "500", "10", "100")}, "0", "id"},
		{"duplicate id", []model.Debt{debt("x", "500", "10", "100"), debt("x", "10", "1", "5")}, "0", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.debts, money.MustParse(tt.extra), refDate, Options{})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			var ie *InvalidInputError
			if !errors.As(err, &ie) {
				t.Fatalf("err is %T, want *InvalidInputError", err)
			}
			if ie.Field != tt.field {
				t.Errorf("field = %q, want %q", ie.Field, tt.field)
			}
		})
	}
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	debts := twoDebts()
	_ = mustPlan(t, debts, "200", Options{Parallel: true})
	assertAmount(t, "A outstanding", debts[0].Outstanding, "10000")
	assertAmount(t, "B outstanding", debts[1].Outstanding, "5000")
}

func TestPlanIdempotent(t *testing.T) {
	first, err := json.Marshal(mustPlan(t, sampleDebts(), "5000", Options{}))
	if err != nil {
		t.Fatal(err)
	}
	for _, opts := range []Options{{}, {Parallel: true}} {
		again, err := json.Marshal(mustPlan(t, sampleDebts(), "5000", opts))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Errorf("results differ (parallel=%v):\n%s\n%s", opts.Parallel, first, again)
		}
	}
}

func TestPlanMonotonicInExtra(t *testing.T) {
	for _, debts := range [][]model.Debt{twoDebts(), sampleDebts()} {
		prevSnow, prevAva := DefaultMaxMonths+1, DefaultMaxMonths+1
		for extra := int64(0); extra <= 20000; extra += 250 {
			a, err := Plan(debts, money.FromInt(extra), refDate, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if a.Snowball.TotalMonths > prevSnow {
				t.Errorf("snowball months rose to %d at extra %d", a.Snowball.TotalMonths, extra)
			}
			if a.Avalanche.TotalMonths > prevAva {
				t.Errorf("avalanche months rose to %d at extra %d", a.Avalanche.TotalMonths, extra)
			}
			prevSnow, prevAva = a.Snowball.TotalMonths, a.Avalanche.TotalMonths
		}
	}
}

func TestPlanScheduleBalances(t *testing.T) {
	a := mustPlan(t, twoDebts(), "200", Options{RecordSchedule: true})
	p := a.Avalanche
	if len(p.Schedule) != p.TotalMonths {
		t.Fatalf("schedule has %d months, want %d", len(p.Schedule), p.TotalMonths)
	}
	interest := money.Zero
	for _, m := range p.Schedule {
		interest = interest.Add(m.Interest)
		for id, b := range m.Balances {
			if b.Sign() < 0 {
				t.Errorf("month %d: balance of %s is negative (%s)", m.Month, id, b)
			}
		}
	}
	if !interest.Equal(p.TotalInterest) {
		t.Errorf("schedule interest %s != total %s", interest, p.TotalInterest)
	}
	// Every unit paid either retired principal or covered interest.
	assertAmount(t, "total paid", p.TotalPaid, a.TotalDebt.Add(p.TotalInterest).String())
	last := p.Schedule[len(p.Schedule)-1]
	assertAmount(t, "final remaining", last.Remaining, "0")
}

func TestPlanMinorUnitCurrency(t *testing.T) {
	debts := []model.Debt{
		debt("c1", "1234.56", "18.5", "50"),
		debt("c2", "800.10", "9.9", "25"),
	}
	a := mustPlan(t, debts, "0", Options{Decimals: 2})
	if a.Snowball.TotalMonths != 34 {
		t.Errorf("months = %d, want 34", a.Snowball.TotalMonths)
	}
	assertAmount(t, "interest", a.Snowball.TotalInterest, "461.58")
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from time.Time
		n    int
		want time.Time
	}{
		{time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 12, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), 0, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := AddMonths(tt.from, tt.n); !got.Equal(tt.want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.from.Format("2006-01-02"), tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestAnalysisJSON(t *testing.T) {
	a := mustPlan(t, twoDebts(), "200", Options{})
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total_debt", "total_emi", "average_interest_rate", "snowball_analysis", "avalanche_analysis", "interest_saved_with_avalanche"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	snow := got["snowball_analysis"].(map[string]any)
	if snow["total_months"] != float64(18) {
		t.Errorf("total_months = %v, want 18", snow["total_months"])
	}
	if snow["debt_free_date"] != "July 2026" {
		t.Errorf("debt_free_date = %v, want July 2026", snow["debt_free_date"])
	}
	if got["interest_saved_with_avalanche"] != float64(233) {
		t.Errorf("interest_saved_with_avalanche = %v, want 233", got["interest_saved_with_avalanche"])
	}
}

func TestAnalysisJSONNonConvergent(t *testing.T) {
	a := mustPlan(t, []model.Debt{debt("x", "10000", "36", "1")}, "0", Options{MaxMonths: 24})
	data, err := json.Marshal(a.Snowball)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if v, ok := got["total_months"]; !ok || v != nil {
		t.Errorf("total_months = %v (present %v), want null", v, ok)
	}
	if v, ok := got["debt_free_date"]; !ok || v != nil {
		t.Errorf("debt_free_date = %v (present %v), want null", v, ok)
	}
	if got["non_convergent"] != true || got["interest_provisional"] != true {
		t.Errorf("markers missing: %s", data)
	}
	if got["months_simulated"] != float64(24) {
		t.Errorf("months_simulated = %v, want 24", got["months_simulated"])
	}
}
