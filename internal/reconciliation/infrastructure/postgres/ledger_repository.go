package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

const defaultLedgerTable = "amc_quarter_payments"

// LedgerRepository reads the quarterly payment ledger from Postgres.
type LedgerRepository struct {
	db    *sql.DB
	table string
}

// LedgerOption configures the repository.
type LedgerOption func(*LedgerRepository)

// WithLedgerTable overrides the default table.
func WithLedgerTable(table string) LedgerOption {
	return func(repo *LedgerRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewLedgerRepository constructs a repository with defaults.
func NewLedgerRepository(db *sql.DB, opts ...LedgerOption) *LedgerRepository {
	repo := &LedgerRepository{db: db, table: defaultLedgerTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// LoadLedger returns the portfolio's ledger keyed by quarter tag.
// A NULL paid_on on a paid row is kept as an empty date.
func (r *LedgerRepository) LoadLedger(ctx context.Context, tenantID, portfolioID string) (reconciliation.Ledger, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ledger repo: nil db")
	}
	if portfolioID == "" {
		return nil, reconciliation.ErrEmptyPortfolioID
	}

	query := fmt.Sprintf(`
SELECT quarter_tag, paid, paid_on
FROM %s
WHERE tenant_id = $1 AND portfolio_id = $2`, r.table)

	rows, err := r.db.QueryContext(ctx, query, tenantID, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := make(reconciliation.Ledger)
	for rows.Next() {
		var tag string
		var entry reconciliation.LedgerEntry
		var paidOn sql.NullString
		if err := rows.Scan(&tag, &entry.Paid, &paidOn); err != nil {
			return nil, err
		}
		entry.Date = paidOn.String
		ledger[tag] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}
