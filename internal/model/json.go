package model

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, matching what API clients send.
	decimal.MarshalJSONWithoutQuotes = true
}
