package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/apperror"
	appctx "plantops/internal/core/context"
)

func TestAccessScope_CompanyAccess(t *testing.T) {
	restricted := &AccessScope{AllowedCompanyIDs: []string{"org-1", "org-2"}}
	assert.True(t, restricted.CanAccessCompany("org-1"))
	assert.True(t, restricted.CanAccessCompany("org-2"))
	assert.False(t, restricted.CanAccessCompany("org-3"))

	admin := &AccessScope{IsAdmin: true, AllowedCompanyIDs: []string{"org-1"}}
	assert.True(t, admin.CanAccessCompany("org-3"))

	// No allow-list means no restriction within the tenant.
	unrestricted := &AccessScope{}
	assert.True(t, unrestricted.CanAccessCompany("org-3"))
}

func TestAccessScope_RequireCompanyAccess(t *testing.T) {
	scope := &AccessScope{AllowedCompanyIDs: []string{"org-1"}}

	require.NoError(t, scope.RequireCompanyAccess("org-1"))

	err := scope.RequireCompanyAccess("org-9")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestGetScope_FromContext(t *testing.T) {
	scope := &AccessScope{UserID: "u-1", AllowedCompanyIDs: []string{"org-1"}}
	ctx := WithScope(context.Background(), scope)

	got := GetScope(ctx)
	assert.Same(t, scope, got)
}

func TestGetScope_FallsBackToUser(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   "u-7",
		TenantID: "t-1",
		OrgIDs:   []string{"org-5"},
	})

	got := GetScope(ctx)
	assert.Equal(t, "u-7", got.UserID)
	assert.Equal(t, "t-1", got.TenantID)
	assert.True(t, got.CanAccessCompany("org-5"))
	assert.False(t, got.CanAccessCompany("org-6"))

	// No authenticated user yields an empty, unrestricted scope.
	anon := GetScope(context.Background())
	assert.True(t, anon.CanAccessCompany("org-5"))
}
