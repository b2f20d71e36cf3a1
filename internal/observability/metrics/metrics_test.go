package metrics

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	ObserveReconcile(ResultSuccess, time.Millisecond)
	ObserveExport("pdf", ResultError, time.Millisecond)
	SetPortfolioStatus("", -1, 0)
}

func TestInitRegistersCounters(t *testing.T) {
	Init(nil, nil)
	before := readValue(t, exportTotal.WithLabelValues("xlsx", ResultSuccess))
	ObserveExport("xlsx", "", time.Millisecond)
	after := readValue(t, exportTotal.WithLabelValues("xlsx", ResultSuccess))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
	SetPortfolioStatus("p1", 3, 1500)
	if got := readValue(t, overdueQuarters.WithLabelValues("p1")); got != 3 {
		t.Fatalf("expected 3 overdue quarters, got %v", got)
	}
}

func TestQueryCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM amc_records").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	if got := queryCount(db, nil, "SELECT COUNT(*) FROM amc_records"); got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
	if got := queryCount(nil, nil, "SELECT 1"); got != 0 {
		t.Fatalf("expected 0 for nil db, got %v", got)
	}
}

func readValue(t *testing.T, metric prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := metric.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}
