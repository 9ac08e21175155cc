// Package costing is the pure pricing computation: it derives an article's
// total cost and profit margin from its rate line items. No I/O.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/garment-catalog-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Compute returns the total cost and profit margin for the given rate line
// items and sales rate.
//
// Total cost is the sum of all line-item prices. The margin is
// (sales_rate - total_cost) / sales_rate * 100, and is zero whenever either
// sales rate or total cost is not positive, so division by zero can never
// occur. Deterministic: identical input always yields identical output.
func Compute(rates []models.Rate, salesRate decimal.Decimal) (totalCost, profitMargin decimal.Decimal) {
	totalCost = decimal.Zero
	for _, r := range rates {
		totalCost = totalCost.Add(r.Price)
	}
	return totalCost, Margin(salesRate, totalCost)
}

// Margin returns the profit margin for an already-known total cost. Used on
// partial updates where sales_rate changes but the stored cost stands.
func Margin(salesRate, totalCost decimal.Decimal) decimal.Decimal {
	if salesRate.IsPositive() && totalCost.IsPositive() {
		return salesRate.Sub(totalCost).Div(salesRate).Mul(hundred)
	}
	return decimal.Zero
}

// RatesFromInput converts caller-submitted rate items into stored rates.
// Prices arrive through LoosePrice, so non-numeric values are already zero.
func RatesFromInput(inputs []models.RateInput) []models.Rate {
	rates := make([]models.Rate, 0, len(inputs))
	for _, in := range inputs {
		rates = append(rates, models.Rate{
			Category: in.Category,
			Title:    in.Title,
			Price:    in.Price.Decimal,
		})
	}
	return rates
}
