package auth

import (
	"context"
	"database/sql"
	"errors"
)

// PortfolioTenantChecker validates portfolio tenant ownership.
type PortfolioTenantChecker interface {
	EnsurePortfolioTenant(ctx context.Context, tenantID, portfolioID string) error
}

// PortfolioChecker checks portfolio ownership against amc_portfolios.
type PortfolioChecker struct {
	db *sql.DB
}

// NewPortfolioChecker constructs a PortfolioChecker.
func NewPortfolioChecker(db *sql.DB) *PortfolioChecker {
	if db == nil {
		return nil
	}
	return &PortfolioChecker{db: db}
}

// EnsurePortfolioTenant verifies the portfolio belongs to tenant.
func (c *PortfolioChecker) EnsurePortfolioTenant(ctx context.Context, tenantID, portfolioID string) error {
	if c == nil || c.db == nil {
		return nil
	}
	if tenantID == "" || portfolioID == "" {
		return nil
	}
	var owner string
	err := c.db.QueryRowContext(ctx, `SELECT tenant_id FROM amc_portfolios WHERE id = $1`, portfolioID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if owner != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
