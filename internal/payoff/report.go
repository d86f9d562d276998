package payoff

import (
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

// Compare folds two finished runs and the debt snapshot into an Analysis.
// ReferenceDate and ExtraPayment are left for the caller.
func Compare(debts []model.Debt, snowball, avalanche PlanResult) Analysis {
	a := Analysis{
		DebtCount:           len(debts),
		TotalDebt:           money.Zero,
		TotalEMI:            money.Zero,
		AverageInterestRate: money.Zero,
		Snowball:            snowball,
		Avalanche:           avalanche,
	}

	weighted := money.Zero
	for _, d := range debts {
		a.TotalDebt = a.TotalDebt.Add(d.Outstanding)
		a.TotalEMI = a.TotalEMI.Add(d.MinimumPayment)
		weighted = weighted.Add(d.Outstanding.Mul(d.AnnualRate))
	}
	if a.TotalDebt.Sign() > 0 {
		a.AverageInterestRate = weighted.Div(a.TotalDebt).Round(2)
	}

	a.InterestSavedWithAvalanche = snowball.TotalInterest.Sub(avalanche.TotalInterest)
	if snowball.Converged && avalanche.Converged {
		a.MonthsSavedWithAvalanche = snowball.TotalMonths - avalanche.TotalMonths
	}
	a.Recommended = recommend(a)
	return a
}

// recommend prefers the run that converges, then the one that pays less
// interest. Ties go to snowball.
func recommend(a Analysis) Strategy {
	switch {
	case !a.Snowball.Converged && !a.Avalanche.Converged:
		return ""
	case !a.Snowball.Converged:
		return Avalanche
	case !a.Avalanche.Converged:
		return Snowball
	case a.InterestSavedWithAvalanche.Sign() > 0:
		return Avalanche
	default:
		return Snowball
	}
}
