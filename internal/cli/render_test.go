package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/debtburn/internal/payoff"
)

func TestRenderTableAlignsMultibyteCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Debt", "Outstanding"},
		Rows: [][]string{
			{"HDFC Credit Card", "₹42,000"},
			{"---"},
			{"Total", "₹246,000"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, l)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q, want empty", got)
	}
}

func TestRenderTimeline(t *testing.T) {
	p := payoff.PlanResult{
		Converged:       true,
		TotalMonths:     12,
		MonthsSimulated: 12,
		PayoffOrder: []payoff.PayoffEvent{
			{DebtID: "a", Name: "Phone", Month: 6},
			{DebtID: "b", Name: "Card", Month: 12},
		},
	}
	out := RenderTimeline(p, 24)
	if !strings.Contains(out, "Phone") || !strings.Contains(out, "1y") {
		t.Errorf("timeline missing labels:\n%s", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("timeline should have one line per debt:\n%s", out)
	}
}
