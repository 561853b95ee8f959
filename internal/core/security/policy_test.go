package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/apperror"
)

func TestStrictPolicy(t *testing.T) {
	closedUntil := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := NewStrictPolicy(closedUntil)
	ctx := context.Background()

	inClosed := closedUntil.AddDate(0, 0, -5)
	open := closedUntil.AddDate(0, 0, 5)

	for name, check := range map[string]func(context.Context, time.Time) error{
		"post":   p.CanPost,
		"modify": p.CanModify,
		"unpost": p.CanUnpost,
	} {
		err := check(ctx, inClosed)
		require.Error(t, err, name)

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr), name)
		assert.Equal(t, apperror.CodePeriodClosed, appErr.Code, name)

		assert.NoError(t, check(ctx, open), name)
	}

	assert.Equal(t, closedUntil, p.GetClosedPeriod(ctx))
}

func TestFlexiblePolicy(t *testing.T) {
	closedUntil := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := NewFlexiblePolicy(48*time.Hour, closedUntil)
	ctx := context.Background()

	require.Error(t, p.CanPost(ctx, closedUntil.AddDate(0, -1, 0)))
	assert.NoError(t, p.CanPost(ctx, closedUntil.AddDate(0, 0, 1)))

	// Without a hard limit everything posts.
	open := NewFlexiblePolicy(48*time.Hour, time.Time{})
	assert.NoError(t, open.CanPost(ctx, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.True(t, p.IsBackdatedWarning(time.Now().Add(-72*time.Hour)))
	assert.False(t, p.IsBackdatedWarning(time.Now().Add(-time.Hour)))

	noThreshold := NewFlexiblePolicy(0, closedUntil)
	assert.False(t, noThreshold.IsBackdatedWarning(time.Now().AddDate(-1, 0, 0)))
}

func TestOpenPolicy(t *testing.T) {
	p := OpenPolicy{}
	ctx := context.Background()
	ancient := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, p.CanPost(ctx, ancient))
	assert.NoError(t, p.CanModify(ctx, ancient))
	assert.NoError(t, p.CanUnpost(ctx, ancient))
	assert.True(t, p.GetClosedPeriod(ctx).IsZero())
}
