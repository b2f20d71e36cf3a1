package reconciliation

import "errors"

var (
	// ErrInvalidConfiguration is returned when reconciliation settings cannot produce finite amounts.
	ErrInvalidConfiguration = errors.New("reconciliation: invalid configuration")
	// ErrInvalidQuarterTag is returned when a tag does not have the CODE-YYYY shape.
	ErrInvalidQuarterTag = errors.New("reconciliation: invalid quarter tag")
	// ErrEmptyPortfolioID is returned when a portfolio id is empty.
	ErrEmptyPortfolioID = errors.New("reconciliation: empty portfolio id")
)
