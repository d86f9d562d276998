package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestDownsampleKeepsEndpoints(t *testing.T) {
	values := make([]float64, 100)
	labels := make([]string, 100)
	for i := range values {
		values[i] = float64(100 - i)
		labels[i] = string(rune('a' + i%26))
	}

	gotV, gotL := Downsample(values, labels, 10)
	if len(gotV) != 10 || len(gotL) != 10 {
		t.Fatalf("len = %d/%d, want 10", len(gotV), len(gotL))
	}
	if gotV[0] != 100 || gotV[9] != 1 {
		t.Errorf("endpoints = %v, %v, want 100, 1", gotV[0], gotV[9])
	}
	if gotL[9] != labels[99] {
		t.Errorf("last label = %q, want %q", gotL[9], labels[99])
	}

	short := []float64{1, 2, 3}
	if got, _ := Downsample(short, nil, 10); len(got) != 3 {
		t.Errorf("short series resampled to %d points", len(got))
	}
}

func TestBarChartHeight(t *testing.T) {
	values := []float64{50000, 42000, 30000, 18000, 6000, 0}
	out := BarChart(values, []string{"Feb", "", "", "", "", "Jul"}, lipgloss.Color("#4385BE"), 40, 8)

	lines := strings.Split(out, "\n")
	// plot rows + x axis + label row
	if len(lines) < 4 {
		t.Fatalf("chart has %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "└") {
		t.Error("chart is missing the x axis")
	}
	if !strings.Contains(out, "Feb") || !strings.Contains(out, "Jul") {
		t.Error("chart is missing endpoint labels")
	}
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, lipgloss.Color("#fff"), 10, 2)
	if strings.Contains(out, "└") {
		t.Error("narrow chart should render as a sparkline")
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{100, 20},
		{246000, 50000},
		{1000, 200},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}
