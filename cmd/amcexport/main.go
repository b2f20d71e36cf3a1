package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"amc-reconcile/internal/reconciliation/application"
	reconciliation "amc-reconcile/internal/reconciliation/domain"
	"amc-reconcile/internal/reconciliation/infrastructure/fileimport"
	"amc-reconcile/internal/reconciliation/infrastructure/memory"
	"amc-reconcile/internal/reconciliation/infrastructure/postgres"
	"amc-reconcile/internal/reconciliation/interfaces"
	"amc-reconcile/internal/settings"
)

const defaultTenant = "local"

type config struct {
	recordsPath  string
	ledgerPath   string
	settingsPath string
	dbURL        string
	tenantID     string
	portfolioID  string
	outDir       string
	formats      []interfaces.Format
	columns      []string
	now          time.Time
	prefix       string
	verbose      bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	var formats, columns, now string
	fs := flag.NewFlagSet("amcexport", flag.ContinueOnError)
	fs.StringVar(&cfg.recordsPath, "records", "", "records file (.json, .csv or .xlsx)")
	fs.StringVar(&cfg.ledgerPath, "ledger", "", "payment ledger file (.json or .yaml, optional)")
	fs.StringVar(&cfg.settingsPath, "settings", os.Getenv("AMC_SETTINGS"), "settings yaml (optional)")
	fs.StringVar(&cfg.dbURL, "db", "", "Postgres DSN; read records and ledger from the database instead of files")
	fs.StringVar(&cfg.tenantID, "tenant", getenvDefault("TENANT_ID", defaultTenant), "tenant id")
	fs.StringVar(&cfg.portfolioID, "portfolio", "default", "portfolio id")
	fs.StringVar(&cfg.outDir, "out", "./out", "output directory")
	fs.StringVar(&formats, "formats", "xlsx,pdf,csv,json", "comma separated export formats")
	fs.StringVar(&columns, "columns", "", "comma separated schedule columns (default all)")
	fs.StringVar(&now, "now", "", "reconciliation date YYYY-MM-DD or RFC3339 (default today)")
	fs.StringVar(&cfg.prefix, "prefix", "", "file name prefix (overrides settings)")
	fs.BoolVar(&cfg.verbose, "v", false, "log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.recordsPath == "" && cfg.dbURL == "" {
		return cfg, errors.New("missing --records or --db")
	}
	for _, name := range interfaces.ParseColumns(formats) {
		format, err := interfaces.ParseFormat(name)
		if err != nil {
			return cfg, err
		}
		cfg.formats = append(cfg.formats, format)
	}
	if len(cfg.formats) == 0 {
		return cfg, errors.New("missing --formats")
	}
	cfg.columns = interfaces.ParseColumns(columns)

	cfg.now = time.Now().UTC()
	if now != "" {
		parsed, err := parseNow(now)
		if err != nil {
			return cfg, err
		}
		cfg.now = parsed
	}
	return cfg, nil
}

func parseNow(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: want YYYY-MM-DD or RFC3339", value)
	}
	return t, nil
}

func run(ctx context.Context, cfg config, stdout io.Writer) error {
	reportSettings, err := settings.Load(cfg.settingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if cfg.prefix != "" {
		reportSettings.FilePrefix = cfg.prefix
	}

	records, ledger, closeFn, err := openSources(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := []application.ServiceOption{}
	if cfg.verbose {
		opts = append(opts, application.WithLogger(log.New(os.Stderr, "amcexport ", log.LstdFlags)))
	}
	service, err := application.NewReconciliationService(records, ledger, reportSettings, cfg.tenantID, opts...)
	if err != nil {
		return err
	}
	report, err := service.RunAt(ctx, cfg.portfolioID, cfg.now)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	var written []string
	for _, format := range cfg.formats {
		data, err := interfaces.Render(report, format, cfg.columns)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := filepath.Join(cfg.outDir, report.FileName(string(format)))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	symbol := reportSettings.CurrencySymbol
	fmt.Fprintf(stdout, "portfolio=%s records=%d quarters=%d paid=%d/%d total=%s paid_amount=%s balance=%s overdue=%d\n",
		report.PortfolioID, report.RecordCount, len(report.Quarters),
		report.Summary.PaidCount, report.Summary.TotalCount,
		application.FormatMoney(symbol, report.Summary.Total),
		application.FormatMoney(symbol, report.Summary.Paid),
		application.FormatMoney(symbol, report.Summary.Balance),
		report.OverdueCount())
	fmt.Fprintf(stdout, "wrote %s\n", strings.Join(written, ", "))
	return nil
}

// openSources returns repositories backed by Postgres when a DSN is given,
// otherwise by the record and ledger files loaded into memory.
func openSources(cfg config) (reconciliation.RecordRepository, reconciliation.LedgerRepository, func(), error) {
	if cfg.dbURL != "" {
		db, err := sql.Open("pgx", cfg.dbURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("db open: %w", err)
		}
		return postgres.NewRecordRepository(db), postgres.NewLedgerRepository(db), func() { _ = db.Close() }, nil
	}

	records, err := fileimport.LoadRecords(cfg.recordsPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load records: %w", err)
	}
	ledger := reconciliation.Ledger{}
	if cfg.ledgerPath != "" {
		ledger, err = fileimport.LoadLedger(cfg.ledgerPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load ledger: %w", err)
		}
	}

	recordRepo := memory.NewRecordRepository()
	if err := recordRepo.Put(cfg.tenantID, cfg.portfolioID, records); err != nil {
		return nil, nil, nil, err
	}
	ledgerRepo := memory.NewLedgerRepository()
	if err := ledgerRepo.Put(cfg.tenantID, cfg.portfolioID, ledger); err != nil {
		return nil, nil, nil, err
	}
	return recordRepo, ledgerRepo, func() {}, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
