package application

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"amc-reconcile/internal/auth"
	reconciliation "amc-reconcile/internal/reconciliation/domain"
	"amc-reconcile/internal/reconciliation/infrastructure/memory"
	"amc-reconcile/internal/settings"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type failingLedger struct{}

func (failingLedger) LoadLedger(context.Context, string, string) (reconciliation.Ledger, error) {
	return nil, errors.New("ledger offline")
}

func seed(t *testing.T) (*memory.RecordRepository, *memory.LedgerRepository) {
	t.Helper()
	records := memory.NewRecordRepository()
	ledger := memory.NewLedgerRepository()
	err := records.Put("tenant-1", "hospital", []reconciliation.Record{
		{
			ID:           "r1",
			ProductName:  "UPS 10kVA",
			Location:     "Pune",
			InvoiceValue: decimal.NewFromInt(250000),
			Quantity:     2,
			Quarters: []reconciliation.QuarterField{
				reconciliation.NewQuarterField("JFM-2024", decimal.NewFromInt(1000)),
				reconciliation.NewQuarterField("JAS-2024", decimal.NewFromInt(2000)),
			},
		},
		{
			ID:          "r2",
			ProductName: "Chiller",
			Location:    "Mumbai",
			Quarters: []reconciliation.QuarterField{
				reconciliation.NewQuarterField("JFM-2024", decimal.NewFromInt(500)),
			},
		},
	})
	if err != nil {
		t.Fatalf("seed records: %v", err)
	}
	if err := ledger.Put("tenant-1", "hospital", reconciliation.Ledger{"JFM-2024": {Paid: true, Date: "2024-04-05"}}); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	return records, ledger
}

func TestServiceRun(t *testing.T) {
	records, ledger := seed(t)
	var logs bytes.Buffer
	svc, err := NewReconciliationService(records, ledger, settings.Defaults(), "tenant-1",
		WithClock(fixedClock{now: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)}),
		WithLogger(log.New(&logs, "", 0)),
		WithIDGenerator(func() string { return "run-1" }),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	report, err := svc.Run(context.Background(), "hospital")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ID != "run-1" || report.RecordCount != 2 {
		t.Fatalf("unexpected report header %+v", report)
	}
	if len(report.Quarters) != 2 {
		t.Fatalf("expected 2 quarters, got %d", len(report.Quarters))
	}
	jfm, jas := report.Quarters[0], report.Quarters[1]
	if jfm.Status != reconciliation.StatusPaid || !jfm.AmountWithTax.Equal(decimal.NewFromInt(1500)) || !jfm.AmountWithoutTax.Equal(decimal.NewFromInt(1271)) {
		t.Fatalf("unexpected JFM-2024 %+v", jfm)
	}
	if jas.Status != reconciliation.StatusPending || jas.DaysOverdue != 46 {
		t.Fatalf("unexpected JAS-2024 %+v", jas)
	}
	if !report.Summary.Balance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected balance %s", report.Summary.Balance)
	}
	if !strings.Contains(logs.String(), "portfolio=hospital") {
		t.Fatalf("expected reconciliation log line, got %q", logs.String())
	}
}

func TestServiceRunUsesContextTenantAndScope(t *testing.T) {
	records, ledger := seed(t)
	svc, err := NewReconciliationService(records, ledger, settings.Defaults(), "tenant-default")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := auth.WithIdentity(context.Background(), auth.Identity{TenantID: "tenant-1", Role: auth.RoleViewer})
	report, err := svc.RunAt(ctx, "hospital", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RecordCount != 2 {
		t.Fatalf("expected tenant-1 records, got %d", report.RecordCount)
	}

	scoped := auth.WithIdentity(context.Background(), auth.Identity{TenantID: "tenant-1", Role: auth.RoleViewer, Portfolios: []string{"other"}})
	if _, err := svc.Run(scoped, "hospital"); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestServiceRunErrors(t *testing.T) {
	records, _ := seed(t)
	svc, err := NewReconciliationService(records, failingLedger{}, settings.Defaults(), "tenant-1")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Run(context.Background(), ""); !errors.Is(err, reconciliation.ErrEmptyPortfolioID) {
		t.Fatalf("expected ErrEmptyPortfolioID, got %v", err)
	}
	if _, err := svc.Run(context.Background(), "hospital"); err == nil || !strings.Contains(err.Error(), "ledger offline") {
		t.Fatalf("expected ledger error, got %v", err)
	}

	bad := settings.Defaults()
	bad.GSTRate = -1
	if _, err := NewReconciliationService(records, failingLedger{}, bad, "tenant-1"); !errors.Is(err, reconciliation.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestServiceRunEmptyPortfolio(t *testing.T) {
	svc, err := NewReconciliationService(memory.NewRecordRepository(), memory.NewLedgerRepository(), settings.Defaults(), "tenant-1")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	report, err := svc.Run(context.Background(), "empty")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Summary.TotalCount != 0 || !report.Summary.Total.IsZero() || len(report.Quarters) != 0 {
		t.Fatalf("expected empty report, got %+v", report.Summary)
	}
}
