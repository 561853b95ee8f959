package company

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/entity"
)

func TestMethodFor(t *testing.T) {
	cfg := ValuationConfig{
		RawMethod:      MethodLastPrice,
		FinishedMethod: MethodManufacturingCost,
		WIPMethod:      MethodAverage,
	}

	assert.Equal(t, MethodLastPrice, cfg.MethodFor(entity.MaterialClassRaw))
	assert.Equal(t, MethodManufacturingCost, cfg.MethodFor(entity.MaterialClassFinished))
	assert.Equal(t, MethodAverage, cfg.MethodFor(entity.MaterialClassWIP))
}

func TestNewCompanyDefaults(t *testing.T) {
	c := NewCompany("CO-1", "Test Co")
	assert.Equal(t, DefaultValuationConfig(), c.ValuationConfig)
	require.NoError(t, c.Validate(context.Background()))
}

func TestValidateRejectsUnknownMethod(t *testing.T) {
	c := NewCompany("CO-1", "Test Co")
	c.WIPMethod = "FIFO"
	assert.Error(t, c.Validate(context.Background()))
}
