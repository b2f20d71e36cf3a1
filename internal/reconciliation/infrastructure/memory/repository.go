package memory

import (
	"context"
	"sync"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

type portfolioKey struct {
	tenantID    string
	portfolioID string
}

// RecordRepository is an in-memory record store.
type RecordRepository struct {
	mu   sync.RWMutex
	data map[portfolioKey][]reconciliation.Record
}

// NewRecordRepository constructs a repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{data: make(map[portfolioKey][]reconciliation.Record)}
}

// Put replaces the records of a portfolio.
func (r *RecordRepository) Put(tenantID, portfolioID string, records []reconciliation.Record) error {
	if portfolioID == "" {
		return reconciliation.ErrEmptyPortfolioID
	}
	copied := make([]reconciliation.Record, len(records))
	for i, rec := range records {
		copied[i] = cloneRecord(rec)
	}
	r.mu.Lock()
	r.data[portfolioKey{tenantID, portfolioID}] = copied
	r.mu.Unlock()
	return nil
}

// ListRecords returns a copy of the portfolio's records.
func (r *RecordRepository) ListRecords(ctx context.Context, tenantID, portfolioID string) ([]reconciliation.Record, error) {
	_ = ctx
	if portfolioID == "" {
		return nil, reconciliation.ErrEmptyPortfolioID
	}
	r.mu.RLock()
	stored := r.data[portfolioKey{tenantID, portfolioID}]
	r.mu.RUnlock()
	out := make([]reconciliation.Record, len(stored))
	for i, rec := range stored {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

// LedgerRepository is an in-memory ledger store.
type LedgerRepository struct {
	mu   sync.RWMutex
	data map[portfolioKey]reconciliation.Ledger
}

// NewLedgerRepository constructs a repository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{data: make(map[portfolioKey]reconciliation.Ledger)}
}

// Put replaces the ledger of a portfolio.
func (r *LedgerRepository) Put(tenantID, portfolioID string, ledger reconciliation.Ledger) error {
	if portfolioID == "" {
		return reconciliation.ErrEmptyPortfolioID
	}
	r.mu.Lock()
	r.data[portfolioKey{tenantID, portfolioID}] = cloneLedger(ledger)
	r.mu.Unlock()
	return nil
}

// LoadLedger returns a copy of the portfolio's ledger.
func (r *LedgerRepository) LoadLedger(ctx context.Context, tenantID, portfolioID string) (reconciliation.Ledger, error) {
	_ = ctx
	if portfolioID == "" {
		return nil, reconciliation.ErrEmptyPortfolioID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneLedger(r.data[portfolioKey{tenantID, portfolioID}]), nil
}

func cloneRecord(rec reconciliation.Record) reconciliation.Record {
	out := rec
	out.Quarters = append([]reconciliation.QuarterField(nil), rec.Quarters...)
	return out
}

func cloneLedger(ledger reconciliation.Ledger) reconciliation.Ledger {
	out := make(reconciliation.Ledger, len(ledger))
	for tag, entry := range ledger {
		out[tag] = entry
	}
	return out
}
