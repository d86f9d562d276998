package source

import (
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
)

// SampleDebts returns a demo portfolio: a credit card, a personal loan and
// an interest-free phone EMI.
func SampleDebts(userID string) []model.Debt {
	return []model.Debt{
		{
			UserID:              userID,
			Name:                "HDFC Credit Card",
			Kind:                model.KindCreditCard,
			Principal:           money.FromInt(50000),
			Outstanding:         money.FromInt(42000),
			AnnualRate:          money.FromInt(36),
			MinimumPayment:      money.FromInt(5000),
			RemainingTermMonths: 10,
		},
		{
			UserID:              userID,
			Name:                "Personal Loan",
			Kind:                model.KindPersonalLoan,
			Principal:           money.FromInt(200000),
			Outstanding:         money.FromInt(156000),
			AnnualRate:          money.FromInt(14),
			MinimumPayment:      money.FromInt(8500),
			RemainingTermMonths: 20,
		},
		{
			UserID:              userID,
			Name:                "iPhone EMI",
			Kind:                model.KindEMI,
			Principal:           money.FromInt(80000),
			Outstanding:         money.FromInt(48000),
			AnnualRate:          money.Zero,
			MinimumPayment:      money.FromInt(8000),
			RemainingTermMonths: 6,
		},
	}
}
