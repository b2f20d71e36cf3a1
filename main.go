package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amc-reconcile/internal/audit"
	"amc-reconcile/internal/auth"
	"amc-reconcile/internal/observability/metrics"
	"amc-reconcile/internal/reconciliation/application"
	"amc-reconcile/internal/reconciliation/infrastructure/postgres"
	"amc-reconcile/internal/reconciliation/interfaces"
	"amc-reconcile/internal/settings"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	reportSettings, err := settings.LoadConfig()
	if err != nil {
		logger.Fatalf("settings error: %v", err)
	}

	metrics.Init(db, logger)
	portfolioChecker := auth.NewPortfolioChecker(db)
	auditRepo := audit.NewRepository(db)

	recordRepo := postgres.NewRecordRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	service, err := application.NewReconciliationService(recordRepo, ledgerRepo, reportSettings, cfg.TenantID,
		application.WithClock(systemClock{}),
		application.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("reconciliation service error: %v", err)
	}
	reconciliationHandler, err := interfaces.NewReconciliationHandler(service, portfolioChecker, auditRepo)
	if err != nil {
		logger.Fatalf("reconciliation handler error: %v", err)
	}
	reconciliationHandler.WithHistory(auditRepo)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reconciliation", reconciliationHandler)
	mux.Handle("/api/v1/reconciliation/", reconciliationHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	logger.Printf("http listening on %s gst_rate=%v", cfg.HTTPAddr, reportSettings.GSTRate)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	TenantID          string
	JWTSecret         string
	MaxOpenConns      int
	ReadHeaderTimeout time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		TenantID:          getenvDefault("TENANT_ID", "tenant-demo"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		MaxOpenConns:      getenvIntDefault("DB_MAX_OPEN_CONNS", 10),
		ReadHeaderTimeout: getenvDuration("HTTP_READ_HEADER_TIMEOUT", 10*time.Second),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
