package reconciliation

import "github.com/shopspring/decimal"

// PaymentSummary rolls up a reconciled sequence.
type PaymentSummary struct {
	Total      decimal.Decimal
	Paid       decimal.Decimal
	Balance    decimal.Decimal
	PaidCount  int
	TotalCount int
}

// Summarize computes totals over tax-inclusive amounts.
func Summarize(quarters []ReconciledQuarter) PaymentSummary {
	summary := PaymentSummary{
		Total: decimal.Zero,
		Paid:  decimal.Zero,
	}
	for _, q := range quarters {
		summary.Total = summary.Total.Add(q.AmountWithTax)
		summary.TotalCount++
		if q.Paid() {
			summary.Paid = summary.Paid.Add(q.AmountWithTax)
			summary.PaidCount++
		}
	}
	summary.Balance = summary.Total.Sub(summary.Paid)
	return summary
}

// OverdueCount returns how many quarters are overdue.
func OverdueCount(quarters []ReconciledQuarter) int {
	count := 0
	for _, q := range quarters {
		if q.DaysOverdue > 0 {
			count++
		}
	}
	return count
}
