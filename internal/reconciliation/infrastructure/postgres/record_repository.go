package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

// RecordRepository reads AMC contract lines from Postgres.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ListRecords loads a portfolio's records with their quarter fields in stored order.
func (r *RecordRepository) ListRecords(ctx context.Context, tenantID, portfolioID string) ([]reconciliation.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	if portfolioID == "" {
		return nil, reconciliation.ErrEmptyPortfolioID
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, product_name, location, invoice_value, quantity, amc_start_date, uat_date
FROM amc_records
WHERE tenant_id = $1 AND portfolio_id = $2
ORDER BY position ASC, id ASC`, tenantID, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []reconciliation.Record
	index := make(map[string]int)
	for rows.Next() {
		var rec reconciliation.Record
		var invoice decimal.NullDecimal
		var startDate, uatDate sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ProductName, &rec.Location, &invoice, &rec.Quantity, &startDate, &uatDate); err != nil {
			return nil, err
		}
		if invoice.Valid {
			rec.InvoiceValue = invoice.Decimal
		}
		rec.AMCStartDate = startDate.String
		rec.UATDate = uatDate.String
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	qrows, err := r.db.QueryContext(ctx, `
SELECT q.record_id, q.quarter_tag, q.amount
FROM amc_record_quarters q
JOIN amc_records r ON r.id = q.record_id
WHERE r.tenant_id = $1 AND r.portfolio_id = $2
ORDER BY q.record_id ASC, q.position ASC`, tenantID, portfolioID)
	if err != nil {
		return nil, err
	}
	defer qrows.Close()

	for qrows.Next() {
		var recordID string
		var field reconciliation.QuarterField
		if err := qrows.Scan(&recordID, &field.Tag, &field.Amount); err != nil {
			return nil, err
		}
		i, ok := index[recordID]
		if !ok {
			continue
		}
		records[i].Quarters = append(records[i].Quarters, field)
	}
	if err := qrows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
