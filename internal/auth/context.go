package auth

import "context"

type contextKey string

const (
	contextKeyTenant     contextKey = "auth.tenant_id"
	contextKeyRole       contextKey = "auth.role"
	contextKeySubject    contextKey = "auth.subject"
	contextKeyPortfolios contextKey = "auth.portfolios"
)

// Identity is the authenticated caller.
type Identity struct {
	TenantID   string
	Role       Role
	Subject    string
	Portfolios []string
}

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, contextKeyTenant, id.TenantID)
	ctx = context.WithValue(ctx, contextKeyRole, id.Role)
	ctx = context.WithValue(ctx, contextKeySubject, id.Subject)
	if len(id.Portfolios) > 0 {
		set := make(map[string]struct{}, len(id.Portfolios))
		for _, p := range id.Portfolios {
			set[p] = struct{}{}
		}
		ctx = context.WithValue(ctx, contextKeyPortfolios, set)
	}
	return ctx
}

// TenantIDFromContext extracts tenant id from context.
func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if tenantID, ok := ctx.Value(contextKeyTenant).(string); ok {
		return tenantID
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}

// PortfolioAllowed reports whether the caller may read portfolioID.
// Tokens without a portfolio scope may read every portfolio of their tenant.
func PortfolioAllowed(ctx context.Context, portfolioID string) bool {
	if ctx == nil {
		return true
	}
	set, ok := ctx.Value(contextKeyPortfolios).(map[string]struct{})
	if !ok {
		return true
	}
	_, allowed := set[portfolioID]
	return allowed
}
