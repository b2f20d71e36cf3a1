package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRepositoryLogFillsDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	meta := json.RawMessage(`{"format":"pdf"}`)
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "t1", "user-1", "admin", "reconciliation.export", "reconciliation", "run-1", "p1",
			[]byte(meta), DigestJSON(meta), "10.0.0.1", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepository(db)
	err = repo.Log(context.Background(), Entry{
		TenantID:     "t1",
		Actor:        "user-1",
		Role:         "admin",
		Action:       "reconciliation.export",
		ResourceType: "reconciliation",
		ResourceID:   "run-1",
		PortfolioID:  "p1",
		Metadata:     meta,
		IP:           "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepositoryListByPortfolio(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 11, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM audit_logs").
		WithArgs("t1", "p1", "reconciliation.export", maxListLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "actor", "role", "action", "resource_type", "resource_id", "portfolio_id", "metadata", "payload_digest", "created_at"}).
			AddRow("audit-1", "t1", "asha", "operator", "reconciliation.export", "reconciliation_report", "rep-1", "p1", []byte(`{"format":"pdf"}`), "abc", created).
			AddRow("audit-2", "t1", "ravi", "viewer", "reconciliation.export", "reconciliation_report", "rep-2", "p1", nil, "", created.Add(-time.Hour)))

	entries, err := NewRepository(db).ListByPortfolio(context.Background(), "t1", "p1", "reconciliation.export", 10000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Actor != "asha" || string(entries[0].Metadata) != `{"format":"pdf"}` {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[1].Metadata != nil || !entries[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	if got := ClientIP(req); got != "192.168.1.5" {
		t.Fatalf("expected remote host, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded address, got %q", got)
	}
	if !strings.HasPrefix(NewID(), "audit-") {
		t.Fatalf("unexpected id prefix")
	}
}
