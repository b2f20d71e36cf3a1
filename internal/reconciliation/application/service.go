package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"amc-reconcile/internal/auth"
	"amc-reconcile/internal/observability/metrics"
	reconciliation "amc-reconcile/internal/reconciliation/domain"
	"amc-reconcile/internal/settings"
)

// Clock provides the reconciliation instant.
type Clock interface {
	Now() time.Time
}

// ReconciliationService loads a portfolio and reconciles it against its ledger.
type ReconciliationService struct {
	records  reconciliation.RecordRepository
	ledger   reconciliation.LedgerRepository
	settings settings.Settings
	tenantID string
	clock    Clock
	logger   *log.Logger
	newID    func() string
}

// ServiceOption configures the service.
type ServiceOption func(*ReconciliationService)

// WithClock overrides the clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *ReconciliationService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *ReconciliationService) {
		s.logger = logger
	}
}

// WithIDGenerator overrides report id generation.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *ReconciliationService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewReconciliationService constructs a service.
func NewReconciliationService(records reconciliation.RecordRepository, ledger reconciliation.LedgerRepository, cfg settings.Settings, tenantID string, opts ...ServiceOption) (*ReconciliationService, error) {
	if records == nil {
		return nil, errors.New("reconciliation service: nil record repo")
	}
	if ledger == nil {
		return nil, errors.New("reconciliation service: nil ledger repo")
	}
	if tenantID == "" {
		return nil, errors.New("reconciliation service: empty tenant id")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &ReconciliationService{
		records:  records,
		ledger:   ledger,
		settings: cfg,
		tenantID: tenantID,
		clock:    systemClock{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run reconciles the portfolio as of the service clock.
func (s *ReconciliationService) Run(ctx context.Context, portfolioID string) (*Report, error) {
	return s.RunAt(ctx, portfolioID, s.clock.Now())
}

// RunAt reconciles the portfolio as of now.
func (s *ReconciliationService) RunAt(ctx context.Context, portfolioID string, now time.Time) (*Report, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReconcile(result, time.Since(start))
	}()

	if portfolioID == "" {
		result = metrics.ResultError
		return nil, reconciliation.ErrEmptyPortfolioID
	}
	if !auth.PortfolioAllowed(ctx, portfolioID) {
		result = metrics.ResultError
		return nil, auth.ErrForbidden
	}
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}

	records, err := s.records.ListRecords(ctx, tenantID, portfolioID)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("reconciliation service: load records: %w", err)
	}
	ledger, err := s.ledger.LoadLedger(ctx, tenantID, portfolioID)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("reconciliation service: load ledger: %w", err)
	}

	report, err := BuildReport(s.newID(), portfolioID, records, ledger, s.settings.ForPortfolio(portfolioID), now)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	metrics.SetPortfolioStatus(portfolioID, report.OverdueCount(), report.Summary.Balance.InexactFloat64())
	if s.logger != nil {
		s.logger.Printf("reconciled portfolio=%s tenant=%s records=%d quarters=%d paid=%d/%d overdue=%d",
			portfolioID, tenantID, report.RecordCount, len(report.Quarters),
			report.Summary.PaidCount, report.Summary.TotalCount, report.OverdueCount())
	}
	return report, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
