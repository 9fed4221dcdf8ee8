package billing

import "github.com/roadsafe/billing-service/internal/model"

type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// CalculateTotals reduces line totals to subtotal, tax and total at the
// given rate. The whole set is recomputed on every selection change; the
// collections are small enough that incremental updates are not worth it.
func CalculateTotals(lineTotals []float64, rate float64) Totals {
	var subtotal float64
	for _, lt := range lineTotals {
		subtotal += lt
	}
	tax := subtotal * rate
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// TotalsForLines is CalculateTotals over built invoice lines.
func TotalsForLines(lines []model.InvoiceLine, rate float64) Totals {
	lineTotals := make([]float64, len(lines))
	for i, line := range lines {
		lineTotals[i] = line.LineTotal
	}
	return CalculateTotals(lineTotals, rate)
}
