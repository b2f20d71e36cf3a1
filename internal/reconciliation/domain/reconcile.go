package reconciliation

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1)

// ReconciledQuarter is one quarter classified against the ledger.
type ReconciledQuarter struct {
	Tag              QuarterTag
	AmountWithTax    decimal.Decimal
	AmountWithoutTax decimal.Decimal
	Status           PaymentStatus
	PaymentDate      string
	DaysOverdue      int
}

// Paid reports whether the quarter is classified PAID.
func (q ReconciledQuarter) Paid() bool {
	return q.Status == StatusPaid
}

// TaxRateFromFloat converts a configured fractional rate (0.18 for 18%).
func TaxRateFromFloat(rate float64) (decimal.Decimal, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return decimal.Zero, fmt.Errorf("%w: tax rate %v", ErrInvalidConfiguration, rate)
	}
	d := decimal.NewFromFloat(rate)
	if _, err := taxFactor(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ExcludeTax returns round(amount / (1 + taxRate)) with halves rounded up.
func ExcludeTax(amount, taxRate decimal.Decimal) (decimal.Decimal, error) {
	factor, err := taxFactor(taxRate)
	if err != nil {
		return decimal.Zero, err
	}
	return excludeTax(amount, factor), nil
}

// excludeTax divides by an already validated 1+rate factor.
func excludeTax(amount, factor decimal.Decimal) decimal.Decimal {
	return amount.Div(factor).Add(half).Floor()
}

func taxFactor(taxRate decimal.Decimal) (decimal.Decimal, error) {
	factor := decimal.NewFromInt(1).Add(taxRate)
	if !factor.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: tax rate %s must be greater than -1", ErrInvalidConfiguration, taxRate)
	}
	return factor, nil
}

// ReconcileQuarters classifies ordered totals against the ledger. A tag without a
// ledger entry is PENDING.
func ReconcileQuarters(ordered []QuarterTotal, ledger Ledger, taxRate decimal.Decimal) ([]ReconciledQuarter, error) {
	factor, err := taxFactor(taxRate)
	if err != nil {
		return nil, err
	}
	out := make([]ReconciledQuarter, 0, len(ordered))
	for _, total := range ordered {
		q := ReconciledQuarter{
			Tag:              total.Tag,
			AmountWithTax:    total.Amount,
			AmountWithoutTax: excludeTax(total.Amount, factor),
			Status:           StatusPending,
		}
		if entry, ok := ledger.Lookup(total.Tag); ok && entry.Paid {
			q.Status = StatusPaid
			q.PaymentDate = entry.Date
		}
		out = append(out, q)
	}
	return out, nil
}

// DaysOverdue returns whole days elapsed since the quarter ended, or zero when the
// quarter is paid, not yet over, or has no calendar end.
func DaysOverdue(q ReconciledQuarter, now time.Time) int {
	if q.Status != StatusPending {
		return 0
	}
	end, ok := q.Tag.EndDate(now.Location())
	if !ok || !now.After(end) {
		return 0
	}
	// Seconds, not time.Duration, which saturates near 292 years.
	return int((now.Unix() - end.Unix()) / 86400)
}

// Reconcile runs one full pass: aggregate, order, classify, age and summarize.
func Reconcile(records []Record, ledger Ledger, taxRate decimal.Decimal, now time.Time) ([]ReconciledQuarter, PaymentSummary, error) {
	ordered := OrderQuarters(AggregateQuarters(records))
	quarters, err := ReconcileQuarters(ordered, ledger, taxRate)
	if err != nil {
		return nil, PaymentSummary{}, err
	}
	for i := range quarters {
		quarters[i].DaysOverdue = DaysOverdue(quarters[i], now)
	}
	return quarters, Summarize(quarters), nil
}
