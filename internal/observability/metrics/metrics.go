package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "platform_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	reconcileTotal   *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	overdueQuarters *prometheus.GaugeVec
	balanceAmount   *prometheus.GaugeVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		reconcileTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_total",
				Help: "Total reconciliation runs by result",
			},
			[]string{"result"},
		)
		reconcileLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_latency_seconds",
				Help:    "Reconciliation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		overdueQuarters = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "overdue_quarters",
				Help: "Overdue quarters at the last reconciliation by portfolio",
			},
			[]string{"portfolio"},
		)
		balanceAmount = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "balance_amount",
				Help: "Unpaid tax-inclusive amount at the last reconciliation by portfolio",
			},
			[]string{"portfolio"},
		)

		prometheus.MustRegister(
			reconcileTotal,
			reconcileLatency,
			exportTotal,
			exportLatency,
			overdueQuarters,
			balanceAmount,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveReconcile records reconciliation latency and result.
func ObserveReconcile(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileTotal != nil {
		reconcileTotal.WithLabelValues(result).Inc()
	}
	if reconcileLatency != nil {
		reconcileLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// SetPortfolioStatus publishes the outstanding position of a portfolio.
func SetPortfolioStatus(portfolio string, overdue int, balance float64) {
	if portfolio == "" {
		portfolio = "unknown"
	}
	if overdue < 0 {
		overdue = 0
	}
	if overdueQuarters != nil {
		overdueQuarters.WithLabelValues(portfolio).Set(float64(overdue))
	}
	if balanceAmount != nil {
		balanceAmount.WithLabelValues(portfolio).Set(balance)
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
