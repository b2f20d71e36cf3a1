package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

func TestRecordRepositoryListRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM amc_records").
		WithArgs("t1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_name", "location", "invoice_value", "quantity", "amc_start_date", "uat_date"}).
			AddRow("r1", "UPS 10kVA", "Pune", "250000.00", 2, "2024-01-01", nil).
			AddRow("r2", "Chiller", "Mumbai", nil, 1, nil, "2023-11-30"))
	mock.ExpectQuery("FROM amc_record_quarters").
		WithArgs("t1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"record_id", "quarter_tag", "amount"}).
			AddRow("r1", "JFM-2024", "1000.00").
			AddRow("r1", "AMJ-2024", nil).
			AddRow("r2", "JFM-2024", "500").
			AddRow("gone", "JFM-2024", "1"))

	repo := NewRecordRepository(db)
	records, err := repo.ListRecords(context.Background(), "t1", "p1")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	r1 := records[0]
	if !r1.InvoiceValue.Equal(decimal.NewFromInt(250000)) || r1.AMCStartDate != "2024-01-01" || r1.UATDate != "" {
		t.Fatalf("unexpected r1 %+v", r1)
	}
	if len(r1.Quarters) != 2 || r1.Quarters[1].Amount.Valid {
		t.Fatalf("unexpected r1 quarters %+v", r1.Quarters)
	}
	if !records[1].InvoiceValue.IsZero() || len(records[1].Quarters) != 1 {
		t.Fatalf("unexpected r2 %+v", records[1])
	}

	totals := reconciliation.AggregateQuarters(records)
	if !totals[reconciliation.MustParseQuarterTag("JFM-2024")].Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected JFM-2024 total %v", totals)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordRepositoryEmptyPortfolio(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery("FROM amc_records").
		WithArgs("t1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_name", "location", "invoice_value", "quantity", "amc_start_date", "uat_date"}))

	records, err := NewRecordRepository(db).ListRecords(context.Background(), "t1", "p1")
	if err != nil || len(records) != 0 {
		t.Fatalf("expected no records, got %v %v", records, err)
	}
	if _, err := NewRecordRepository(db).ListRecords(context.Background(), "t1", ""); !errors.Is(err, reconciliation.ErrEmptyPortfolioID) {
		t.Fatalf("expected ErrEmptyPortfolioID, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLedgerRepositoryLoadLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM payments_v2").
		WithArgs("t1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"quarter_tag", "paid", "paid_on"}).
			AddRow("JFM-2024", true, "2024-04-02").
			AddRow("AMJ-2024", true, nil).
			AddRow("JAS-2024", false, nil))

	repo := NewLedgerRepository(db, WithLedgerTable("payments_v2"))
	ledger, err := repo.LoadLedger(context.Background(), "t1", "p1")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if entry := ledger["JFM-2024"]; !entry.Paid || entry.Date != "2024-04-02" {
		t.Fatalf("unexpected JFM-2024 %+v", entry)
	}
	if entry := ledger["AMJ-2024"]; !entry.Paid || entry.Date != "" {
		t.Fatalf("unexpected AMJ-2024 %+v", entry)
	}
	if entry := ledger["JAS-2024"]; entry.Paid {
		t.Fatalf("unexpected JAS-2024 %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
