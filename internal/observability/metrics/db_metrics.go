package metrics

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const dbGaugeTimeout = 2 * time.Second

type dbGauge struct {
	name  string
	help  string
	query string
}

// Gauges evaluated on every scrape.
var dbGauges = []dbGauge{
	{
		name:  "amc_records",
		help:  "Tracked AMC contract lines",
		query: "SELECT COUNT(*) FROM amc_records",
	},
	{
		name:  "amc_portfolios",
		help:  "Portfolios with at least one record",
		query: "SELECT COUNT(DISTINCT portfolio_id) FROM amc_records",
	},
	{
		name:  "ledger_paid_quarters",
		help:  "Ledger rows marked paid",
		query: "SELECT COUNT(*) FROM amc_quarter_payments WHERE paid",
	},
	{
		name:  "ledger_unpaid_quarters",
		help:  "Ledger rows recorded but not paid",
		query: "SELECT COUNT(*) FROM amc_quarter_payments WHERE NOT paid",
	},
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	for _, g := range dbGauges {
		query := g.query
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: metricPrefix + g.name, Help: g.help},
			func() float64 { return queryCount(db, logger, query) },
		))
	}
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbGaugeTimeout)
	defer cancel()
	var count int64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
