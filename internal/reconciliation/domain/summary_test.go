package reconciliation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if !summary.Total.IsZero() || !summary.Paid.IsZero() || !summary.Balance.IsZero() {
		t.Fatalf("expected zero amounts, got %+v", summary)
	}
	if summary.PaidCount != 0 || summary.TotalCount != 0 {
		t.Fatalf("expected zero counts, got %+v", summary)
	}
}

func TestSummarizeBalances(t *testing.T) {
	quarters := []ReconciledQuarter{
		{Tag: MustParseQuarterTag("JFM-2024"), AmountWithTax: decimal.RequireFromString("1180.50"), Status: StatusPaid},
		{Tag: MustParseQuarterTag("AMJ-2024"), AmountWithTax: decimal.NewFromInt(500), Status: StatusPending},
		{Tag: MustParseQuarterTag("JAS-2024"), AmountWithTax: decimal.NewFromInt(0), Status: StatusPaid},
	}
	summary := Summarize(quarters)
	if !summary.Balance.Equal(summary.Total.Sub(summary.Paid)) {
		t.Fatalf("balance does not equal total minus paid: %+v", summary)
	}
	if summary.PaidCount > summary.TotalCount {
		t.Fatalf("paid count exceeds total: %+v", summary)
	}
	if !summary.Total.Equal(decimal.RequireFromString("1680.50")) {
		t.Fatalf("unexpected total %s", summary.Total)
	}
	if summary.PaidCount != 2 || summary.TotalCount != 3 {
		t.Fatalf("unexpected counts %+v", summary)
	}
}

func TestOverdueCount(t *testing.T) {
	quarters := []ReconciledQuarter{{DaysOverdue: 0}, {DaysOverdue: 4}, {DaysOverdue: 46}}
	if got := OverdueCount(quarters); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
