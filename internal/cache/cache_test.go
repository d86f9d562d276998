package cache

import (
	"context"
	"testing"
	"time"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := m.Get(ctx, "k"); !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0 after expiry", m.Len())
	}
}

func TestMemoryCopiesValue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed to %q", got)
	}
}

func TestKey(t *testing.T) {
	a := model.Debt{ID: "a", Name: "Card", Outstanding: money.MustParse("100"), AnnualRate: money.MustParse("12"), MinimumPayment: money.MustParse("10")}
	b := model.Debt{ID: "b", Name: "Loan", Outstanding: money.MustParse("500"), AnnualRate: money.MustParse("9"), MinimumPayment: money.MustParse("50")}
	ref := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	k1 := Key([]model.Debt{a, b}, money.Zero, ref, 1200, 0)
	if Key([]model.Debt{a, b}, money.Zero, ref.Add(3*time.Hour), 1200, 0) != k1 {
		t.Error("key should ignore time of day")
	}
	if Key([]model.Debt{b, a}, money.Zero, ref, 1200, 0) == k1 {
		t.Error("key should change with debt order")
	}

	renamed := a
	renamed.Name = "Renamed"
	if Key([]model.Debt{renamed, b}, money.Zero, ref, 1200, 0) == k1 {
		t.Error("key should change with debt name")
	}

	paid := a
	paid.Outstanding = money.MustParse("90")
	if Key([]model.Debt{paid, b}, money.Zero, ref, 1200, 0) == k1 {
		t.Error("key should change with outstanding balance")
	}
	if Key([]model.Debt{a, b}, money.MustParse("1"), ref, 1200, 0) == k1 {
		t.Error("key should change with extra payment")
	}
}
