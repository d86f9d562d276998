package payoff

import (
	"reflect"
	"testing"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

func TestOrder(t *testing.T) {
	debts := []model.Debt{
		debt("c", "5000", "12", "100"),
		debt("a", "5000", "24", "100"),
		debt("b", "2000", "24", "100"),
		debt("d", "9000", "12", "100"),
	}
	tests := []struct {
		name     string
		strategy Strategy
		balances map[string]money.Amount
		want     []string
	}{
		{"snowball by balance then id", Snowball, nil, []string{"b", "a", "c", "d"}},
		{"avalanche by rate then balance", Avalanche, nil, []string{"a", "b", "d", "c"}},
		{
			"snowball follows current balances",
			Snowball,
			map[string]money.Amount{"d": money.MustParse("100")},
			[]string{"d", "b", "a", "c"},
		},
		{
			"avalanche ties on rate and balance fall back to id",
			Avalanche,
			map[string]money.Amount{"b": money.MustParse("5000")},
			[]string{"a", "b", "d", "c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Order(tt.strategy, debts, tt.balances); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Order(%s) = %v, want %v", tt.strategy, got, tt.want)
			}
		})
	}
}

func TestOrderDoesNotReorderInput(t *testing.T) {
	debts := []model.Debt{debt("z", "900", "1", "10"), debt("y", "100", "1", "10")}
	_ = Order(Snowball, debts, nil)
	if debts[0].ID != "z" {
		t.Errorf("input reordered: %v", debts)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"snowball": Snowball, " Avalanche ": Avalanche} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStrategy("hybrid"); err == nil {
		t.Error("ParseStrategy(hybrid) should fail")
	}
}
