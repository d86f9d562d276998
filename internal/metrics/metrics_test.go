package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/theirongolddev/debtburn/internal/payoff"
)

func TestObserveAnalysis(t *testing.T) {
	conv := PlansTotal.WithLabelValues("snowball", "converged")
	nonconv := PlansTotal.WithLabelValues("avalanche", "non_convergent")
	beforeConv := testutil.ToFloat64(conv)
	beforeNon := testutil.ToFloat64(nonconv)

	ObserveAnalysis(payoff.Analysis{
		Snowball:  payoff.PlanResult{Strategy: payoff.Snowball, Converged: true, TotalMonths: 12},
		Avalanche: payoff.PlanResult{Strategy: payoff.Avalanche},
	}, time.Millisecond)

	if got := testutil.ToFloat64(conv) - beforeConv; got != 1 {
		t.Errorf("converged snowball delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(nonconv) - beforeNon; got != 1 {
		t.Errorf("non-convergent avalanche delta = %v, want 1", got)
	}
}
