package reconciliation

import "github.com/shopspring/decimal"

// QuarterField is one quarter-tagged amount carried by a record.
// Tag is kept raw; fields whose tag is not CODE-YYYY are ignored downstream.
type QuarterField struct {
	Tag    string
	Amount decimal.NullDecimal
}

// Record is one tracked contract line with its quarterly obligations.
type Record struct {
	ID           string
	ProductName  string
	Location     string
	InvoiceValue decimal.Decimal
	Quantity     int
	AMCStartDate string
	UATDate      string
	Quarters     []QuarterField
}

// QuarterAmount is a parsed tag with its amount.
type QuarterAmount struct {
	Tag    QuarterTag
	Amount decimal.Decimal
}

// NewQuarterField builds a field holding amount.
func NewQuarterField(tag string, amount decimal.Decimal) QuarterField {
	return QuarterField{Tag: tag, Amount: decimal.NewNullDecimal(amount)}
}
