package reconciliation

import "context"

// RecordRepository loads the contract lines of a portfolio.
type RecordRepository interface {
	ListRecords(ctx context.Context, tenantID, portfolioID string) ([]Record, error)
}

// LedgerRepository loads the payment ledger of a portfolio. It is read-only to reconciliation.
type LedgerRepository interface {
	LoadLedger(ctx context.Context, tenantID, portfolioID string) (Ledger, error)
}
