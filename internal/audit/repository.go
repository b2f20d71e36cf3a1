package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Repository writes audit logs.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_logs (
	id, tenant_id, actor, role, action, resource_type, resource_id, portfolio_id,
	metadata, payload_digest, ip, user_agent, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)`, entry.ID, entry.TenantID, entry.Actor, entry.Role, entry.Action, entry.ResourceType, entry.ResourceID, entry.PortfolioID,
		[]byte(entry.Metadata), entry.PayloadDigest, entry.IP, entry.UserAgent, entry.CreatedAt)
	return err
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListByPortfolio returns the newest entries for a portfolio. An empty action matches all actions.
func (r *Repository) ListByPortfolio(ctx context.Context, tenantID, portfolioID, action string, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("audit repo: nil db")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, actor, role, action, resource_type, resource_id, portfolio_id,
	metadata, payload_digest, created_at
FROM audit_logs
WHERE tenant_id = $1 AND portfolio_id = $2 AND ($3 = '' OR action = $3)
ORDER BY created_at DESC
LIMIT $4`, tenantID, portfolioID, action, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var metadata []byte
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Actor, &entry.Role, &entry.Action,
			&entry.ResourceType, &entry.ResourceID, &entry.PortfolioID, &metadata, &entry.PayloadDigest, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			entry.Metadata = json.RawMessage(metadata)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
