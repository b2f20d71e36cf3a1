package application

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
	"amc-reconcile/internal/settings"
)

// Report is the normalized output consumed by renderers.
type Report struct {
	ID          string
	PortfolioID string
	GeneratedAt time.Time
	Settings    settings.Settings
	RecordCount int
	Quarters    []reconciliation.ReconciledQuarter
	Summary     reconciliation.PaymentSummary
	Schedule    []reconciliation.ScheduleRow
}

// BuildReport reconciles records against the ledger as of now.
func BuildReport(id, portfolioID string, records []reconciliation.Record, ledger reconciliation.Ledger, cfg settings.Settings, now time.Time) (*Report, error) {
	rate, err := cfg.TaxRate()
	if err != nil {
		return nil, err
	}
	quarters, summary, err := reconciliation.Reconcile(records, ledger, rate, now)
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:          id,
		PortfolioID: portfolioID,
		GeneratedAt: now,
		Settings:    cfg,
		RecordCount: len(records),
		Quarters:    quarters,
		Summary:     summary,
		Schedule:    reconciliation.ProjectRecords(records),
	}, nil
}

// OverdueCount returns how many quarters are past due.
func (r *Report) OverdueCount() int {
	return reconciliation.OverdueCount(r.Quarters)
}

// ScheduleTable lists each record with the union of quarter columns in chronological order.
func (r *Report) ScheduleTable() Table {
	tags := reconciliation.QuarterColumns(r.Schedule)
	t := Table{
		Name: "AMC Schedule",
		Columns: []string{
			ColumnProductName,
			ColumnLocation,
			ColumnInvoiceValue,
			ColumnQuantity,
			ColumnAMCStartDate,
			ColumnUATDate,
		},
	}
	for _, tag := range tags {
		t.Columns = append(t.Columns, tag.String())
	}
	for _, row := range r.Schedule {
		cells := []any{
			row.ProductName,
			row.Location,
			number(row.InvoiceValue),
			row.Quantity,
			row.AMCStartDate,
			row.UATDate,
		}
		for _, tag := range tags {
			if amount, ok := row.Amount(tag); ok {
				cells = append(cells, number(amount))
				continue
			}
			cells = append(cells, nil)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// QuarterSummaryTable lists aggregated quarters with their classification.
func (r *Report) QuarterSummaryTable() Table {
	t := Table{
		Name: "Quarter Summary",
		Columns: []string{
			ColumnQuarter,
			ColumnAmountWithGST,
			ColumnAmountWithoutGST,
			ColumnPaymentStatus,
			ColumnPaymentDate,
		},
	}
	for _, q := range r.Quarters {
		t.Rows = append(t.Rows, []any{
			q.Tag.String(),
			number(q.AmountWithTax),
			number(q.AmountWithoutTax),
			string(q.Status),
			q.PaymentDate,
		})
	}
	return t
}

// PaymentStatusTable lists quarters with their overdue age.
func (r *Report) PaymentStatusTable() Table {
	t := Table{
		Name: "Payment Status",
		Columns: []string{
			ColumnQuarter,
			ColumnAmount,
			ColumnStatus,
			ColumnPaymentDate,
			ColumnDaysOverdue,
		},
	}
	for _, q := range r.Quarters {
		t.Rows = append(t.Rows, []any{
			q.Tag.String(),
			number(q.AmountWithTax),
			string(q.Status),
			q.PaymentDate,
			q.DaysOverdue,
		})
	}
	return t
}

// SummaryTable lists the payment summary metrics formatted for display.
func (r *Report) SummaryTable() Table {
	return r.SummaryTableFor(r.Settings.CurrencySymbol)
}

// SummaryTableFor is SummaryTable with amounts prefixed by symbol.
func (r *Report) SummaryTableFor(symbol string) Table {
	return Table{
		Name:    "Payment Summary",
		Columns: []string{ColumnMetric, ColumnValue},
		Rows: [][]any{
			{"Total Amount", FormatMoney(symbol, r.Summary.Total)},
			{"Paid Amount", FormatMoney(symbol, r.Summary.Paid)},
			{"Balance Amount", FormatMoney(symbol, r.Summary.Balance)},
			{"Quarters Paid", fmt.Sprintf("%d/%d", r.Summary.PaidCount, r.Summary.TotalCount)},
		},
	}
}

// SettingsTable lists the settings the report was produced with.
func (r *Report) SettingsTable() Table {
	rows := [][]any{
		{"GST Rate", strconv.FormatFloat(r.Settings.GSTRate, 'f', -1, 64)},
		{"Currency Symbol", r.Settings.CurrencySymbol},
		{"Report Title", r.Settings.ReportTitle},
	}
	if r.Settings.CompanyName != "" {
		rows = append(rows, []any{"Company Name", r.Settings.CompanyName})
	}
	return Table{
		Name:    "Settings",
		Columns: []string{ColumnSetting, ColumnValue},
		Rows:    rows,
	}
}

var defaultFilePrefixes = map[string]string{
	"xlsx": "AMC_Schedule",
	"csv":  "AMC_Schedule",
	"pdf":  "AMC_Report",
	"json": "AMC_Data",
}

// FileName returns <prefix>_<YYYY-MM-DD>.<ext> for the report date. A configured
// prefix applies to every format; otherwise each format has its own default.
func (r *Report) FileName(ext string) string {
	prefix := r.Settings.FilePrefix
	if prefix == "" {
		prefix = defaultFilePrefixes[ext]
	}
	if prefix == "" {
		prefix = "AMC_Schedule"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, r.GeneratedAt.Format("2006-01-02"), ext)
}

// FormatMoney renders an amount with thousands separators and up to two decimals.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole := amount.Truncate(0)
	frac := amount.Sub(whole).Round(2)
	if frac.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		whole = whole.Add(decimal.NewFromInt(1))
		frac = frac.Sub(decimal.NewFromInt(1))
	}
	digits := whole.String()
	var grouped []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, digits[i])
	}
	out := sign + symbol + string(grouped)
	if !frac.IsZero() {
		out += frac.StringFixed(2)[1:]
	}
	return out
}

func number(d decimal.Decimal) any {
	if d.IsInteger() && d.Abs().LessThan(decimal.New(1, 15)) {
		return int(d.IntPart())
	}
	return d.InexactFloat64()
}
