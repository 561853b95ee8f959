package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

func qty(f float64) types.Quantity { return types.NewQuantityFromFloat64(f) }

func TestAddLineRecalculatesTotals(t *testing.T) {
	d := NewDelivery(id.New().String(), id.New(), KindDelivery)
	d.AddLine(id.New(), qty(50), types.MustMoney("4.20"))
	d.AddLine(id.New(), qty(10), types.MustMoney("3"))

	assert.Equal(t, qty(60), d.TotalQuantity)
	assert.True(t, d.TotalAmount.Equal(types.MustMoney("240")), "total = %s", d.TotalAmount)
}

func TestValidate(t *testing.T) {
	valid := func(kind Kind) *Delivery {
		d := NewDelivery(id.New().String(), id.New(), kind)
		d.AddLine(id.New(), qty(10), types.MustMoney("4.20"))
		return d
	}
	ctx := context.Background()

	require.NoError(t, valid(KindDelivery).Validate(ctx))
	require.NoError(t, valid(KindScrapSale).Validate(ctx))

	t.Run("invalid kind", func(t *testing.T) {
		d := valid("GIFT")
		assert.Error(t, d.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		d := NewDelivery(id.New().String(), id.New(), KindDelivery)
		assert.Error(t, d.Validate(ctx))
	})

	t.Run("negative sale price", func(t *testing.T) {
		d := valid(KindDelivery)
		d.Lines[0].SalePrice = types.MustMoney("-1")
		assert.Error(t, d.Validate(ctx))
	})
}

func TestGenerateMovements_ShipsAtBookCost(t *testing.T) {
	zoneID := id.New()
	d := NewDelivery(id.New().String(), zoneID, KindDelivery)
	d.AddLine(id.New(), qty(50), types.MustMoney("4.20"))
	d.Number = "DL-2026-00001"
	d.MarkPosted()

	set, err := d.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 1)

	m := set.Stock[0]
	assert.Equal(t, entity.DirectionOut, m.Direction)
	assert.Equal(t, entity.MovementTypeIssue, m.MovementType)
	assert.Equal(t, zoneID, m.ZoneID)
	assert.Nil(t, m.CostPerUnit, "the recorder charges the zone's book cost")
	assert.Equal(t, DocumentType, m.Reference.Type)
	assert.Equal(t, 1, m.Reference.Version)
}

func TestGenerateMovements_ScrapSale(t *testing.T) {
	d := NewDelivery(id.New().String(), id.New(), KindScrapSale)
	d.AddLine(id.New(), qty(5), types.MustMoney("0.50"))

	set, err := d.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 1)
	assert.Equal(t, entity.MovementTypeScrapSale, set.Stock[0].MovementType)
}
