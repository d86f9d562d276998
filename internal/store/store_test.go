package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "debts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample(name, outstanding string) model.Debt {
	return model.Debt{
		UserID:              "u1",
		Name:                name,
		Kind:                model.KindCreditCard,
		Principal:           money.MustParse("50000"),
		Outstanding:         money.MustParse(outstanding),
		AnnualRate:          money.MustParse("36.5"),
		MinimumPayment:      money.MustParse("5000"),
		RemainingTermMonths: 10,
	}
}

func TestSaveAndListDebts(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	saved, err := s.SaveDebt(ctx, sample("HDFC Credit Card", "42000.75"))
	if err != nil {
		t.Fatalf("SaveDebt: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("SaveDebt did not assign an id")
	}

	debts, err := s.ListDebts(ctx, "u1")
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("ListDebts returned %d debts, want 1", len(debts))
	}
	got := debts[0]
	if got.Name != "HDFC Credit Card" || got.Kind != model.KindCreditCard {
		t.Errorf("got %+v", got)
	}
	if !got.Outstanding.Equal(money.MustParse("42000.75")) {
		t.Errorf("Outstanding = %s, want 42000.75", got.Outstanding)
	}
	if !got.AnnualRate.Equal(money.MustParse("36.5")) {
		t.Errorf("AnnualRate = %s, want 36.5", got.AnnualRate)
	}
	if got.RemainingTermMonths != 10 {
		t.Errorf("RemainingTermMonths = %d, want 10", got.RemainingTermMonths)
	}

	other, err := s.ListDebts(ctx, "someone-else")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("other user sees %d debts", len(other))
	}
}

func TestSaveDebtUpdates(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	d, err := s.SaveDebt(ctx, sample("Card", "1000"))
	if err != nil {
		t.Fatal(err)
	}
	d.Outstanding = money.MustParse("750")
	if _, err := s.SaveDebt(ctx, d); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetDebt(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if !got.Outstanding.Equal(money.MustParse("750")) {
		t.Errorf("Outstanding = %s, want 750", got.Outstanding)
	}
	if n, _ := s.DebtCount(ctx, "u1"); n != 1 {
		t.Errorf("DebtCount = %d, want 1", n)
	}
}

func TestDeleteDebt(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	d, err := s.SaveDebt(ctx, sample("Card", "1000"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDebt(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDebt: %v", err)
	}
	if err := s.DeleteDebt(ctx, d.ID); !errors.Is(err, ErrDebtNotFound) {
		t.Errorf("second DeleteDebt = %v, want ErrDebtNotFound", err)
	}
	if _, err := s.GetDebt(ctx, d.ID); !errors.Is(err, ErrDebtNotFound) {
		t.Errorf("GetDebt after delete = %v, want ErrDebtNotFound", err)
	}
}

func TestImportDebtsKeepsOrderAndReplaces(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if _, err := s.SaveDebt(ctx, sample("Old", "10")); err != nil {
		t.Fatal(err)
	}
	batch := []model.Debt{sample("First", "300"), sample("Second", "200"), sample("Third", "100")}
	n, err := s.ImportDebts(ctx, "u1", batch, true)
	if err != nil {
		t.Fatalf("ImportDebts: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d, want 3", n)
	}
	debts, err := s.ListDebts(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, d := range debts {
		names = append(names, d.Name)
	}
	if len(names) != 3 || names[0] != "First" || names[2] != "Third" {
		t.Errorf("names = %v, want [First Second Third]", names)
	}
}

func TestAnalysisHistory(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	debts := []model.Debt{{
		ID: "x", Outstanding: money.MustParse("1200"), AnnualRate: money.Zero,
		MinimumPayment: money.MustParse("100"),
	}}
	a, err := payoff.Plan(debts, money.Zero, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), payoff.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveAnalysis(ctx, "u1", a); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	recs, err := s.RecentAnalyses(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("RecentAnalyses: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].SnowballMonths == nil || *recs[0].SnowballMonths != 12 {
		t.Errorf("SnowballMonths = %v, want 12", recs[0].SnowballMonths)
	}
	if !recs[0].TotalDebt.Equal(money.MustParse("1200")) {
		t.Errorf("TotalDebt = %s, want 1200", recs[0].TotalDebt)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: "postgres"}
	if got := pg.rebind("SELECT 1 WHERE a = ? AND b = ?"); got != "SELECT 1 WHERE a = $1 AND b = $2" {
		t.Errorf("rebind = %q", got)
	}
	lite := &Store{driver: "sqlite"}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	if !IsPostgres("postgresql://u@h/db") || IsPostgres("/tmp/debts.db") {
		t.Error("IsPostgres misclassified DSN")
	}
}
