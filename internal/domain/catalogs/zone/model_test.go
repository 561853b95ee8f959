package zone

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/entity"
)

func TestMaterialClass(t *testing.T) {
	// A WIP zone forces the WIP class regardless of the item.
	wip := NewZone("Z-WIP", "Floor", TypeWIP)
	assert.Equal(t, entity.MaterialClassWIP, wip.MaterialClass(true))
	assert.Equal(t, entity.MaterialClassWIP, wip.MaterialClass(false))

	// Elsewhere the item type decides.
	raw := NewZone("Z-RAW", "Raw store", TypeRaw)
	assert.Equal(t, entity.MaterialClassRaw, raw.MaterialClass(true))
	assert.Equal(t, entity.MaterialClassFinished, raw.MaterialClass(false))

	scrap := NewZone("Z-SCRAP", "Scrap", TypeScrap)
	assert.Equal(t, entity.MaterialClassFinished, scrap.MaterialClass(false))
}

func TestCanHoldStock(t *testing.T) {
	z := NewZone("Z-RAW", "Raw store", TypeRaw)
	assert.True(t, z.CanHoldStock())

	z.IsActive = false
	assert.False(t, z.CanHoldStock())

	folder := NewZone("GRP", "Zone group", TypeRaw)
	folder.IsFolder = true
	assert.False(t, folder.CanHoldStock())
}

func TestValidate(t *testing.T) {
	require.NoError(t, NewZone("Z-1", "Store", TypeTransit).Validate(context.Background()))
	assert.Error(t, NewZone("Z-1", "Store", "GARAGE").Validate(context.Background()))
}
