package reconciliation

// PaymentStatus classifies a reconciled quarter.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "PAID"
	StatusPending PaymentStatus = "PENDING"
)

// LedgerEntry records whether a quarter was paid. Date may be empty even when Paid is set.
type LedgerEntry struct {
	Paid bool   `json:"paid" yaml:"paid"`
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Ledger maps CODE-YYYY tags to payment entries.
type Ledger map[string]LedgerEntry

// Lookup returns the entry recorded for tag.
func (l Ledger) Lookup(tag QuarterTag) (LedgerEntry, bool) {
	if l == nil {
		return LedgerEntry{}, false
	}
	entry, ok := l[tag.String()]
	return entry, ok
}
