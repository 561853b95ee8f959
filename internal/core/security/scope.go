// Package security provides authorization and access control.
package security

import (
	"context"
	"fmt"

	"plantops/internal/core/apperror"
	appctx "plantops/internal/core/context"
)

// AccessScope defines the boundaries of data visibility for the current
// request. In Database-per-Tenant architecture tenant isolation happens at
// the connection level; the scope narrows access further, down to the
// companies a user may operate on within the tenant.
type AccessScope struct {
	// TenantID is the current tenant (from request/JWT).
	TenantID string

	// UserID is the authenticated user.
	UserID string

	// IsAdmin bypasses company filtering.
	IsAdmin bool

	// AllowedCompanyIDs limits access to specific companies.
	// Empty = no restriction within the tenant.
	AllowedCompanyIDs []string
}

// NewAccessScope creates AccessScope from context.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}

	return &AccessScope{
		TenantID:          user.TenantID,
		UserID:            user.UserID,
		IsAdmin:           user.IsAdmin,
		AllowedCompanyIDs: user.OrgIDs,
	}
}

// CanAccessCompany checks if user can operate on the company.
func (s *AccessScope) CanAccessCompany(companyID string) bool {
	if s.IsAdmin || len(s.AllowedCompanyIDs) == 0 {
		return true
	}
	for _, id := range s.AllowedCompanyIDs {
		if id == companyID {
			return true
		}
	}
	return false
}

// RequireCompanyAccess returns a Forbidden error if the company is outside
// the scope.
func (s *AccessScope) RequireCompanyAccess(companyID string) error {
	if !s.CanAccessCompany(companyID) {
		return apperror.NewForbidden(
			fmt.Sprintf("access to company %s denied", companyID),
		).WithDetail("company_id", companyID)
	}
	return nil
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
