package goods_receipt

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
	gr := NewGoodsReceipt(id.New().String(), id.New())
	gr.AddLine(id.New(), qty(100), types.MustMoney("2.40"))
	gr.AddLine(id.New(), qty(5), types.MustMoney("10"))

	assert.Equal(t, qty(105), gr.TotalQuantity)
	assert.True(t, gr.TotalAmount.Equal(types.MustMoney("290")), "total = %s", gr.TotalAmount)

	assert.Equal(t, 1, gr.Lines[0].LineNo)
	assert.Equal(t, 2, gr.Lines[1].LineNo)
	assert.True(t, gr.Lines[0].Amount.Equal(types.MustMoney("240")))
}

func TestValidate(t *testing.T) {
	valid := func() *GoodsReceipt {
		gr := NewGoodsReceipt(id.New().String(), id.New())
		gr.AddLine(id.New(), qty(10), types.MustMoney("2.40"))
		return gr
	}
	ctx := context.Background()

	require.NoError(t, valid().Validate(ctx))

	t.Run("missing zone", func(t *testing.T) {
		gr := valid()
		gr.ZoneID = id.ID{}
		assert.Error(t, gr.Validate(ctx))
	})

	t.Run("no lines", func(t *testing.T) {
		gr := NewGoodsReceipt(id.New().String(), id.New())
		assert.Error(t, gr.Validate(ctx))
	})

	t.Run("zero quantity", func(t *testing.T) {
		gr := valid()
		gr.Lines[0].Quantity = 0
		assert.Error(t, gr.Validate(ctx))
	})

	t.Run("negative price", func(t *testing.T) {
		gr := valid()
		gr.Lines[0].UnitPrice = types.MustMoney("-1")
		assert.Error(t, gr.Validate(ctx))
	})
}

func TestGenerateMovements(t *testing.T) {
	zoneID := id.New()
	gr := NewGoodsReceipt(id.New().String(), zoneID)
	gr.AddLine(id.New(), qty(100), types.MustMoney("2.40"))
	gr.AddLine(id.New(), qty(5), types.MustMoney("10"))
	gr.Number = "GR-2026-00001"
	gr.MarkPosted()

	set, err := gr.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 2)

	first := set.Stock[0]
	assert.Equal(t, entity.DirectionIn, first.Direction)
	assert.Equal(t, entity.MovementTypeReceipt, first.MovementType)
	assert.Equal(t, zoneID, first.ZoneID)
	assert.Equal(t, qty(100), first.Quantity)
	require.NotNil(t, first.CostPerUnit, "purchase price is the explicit cost")
	assert.True(t, first.CostPerUnit.Equal(types.MustMoney("2.40")))
	assert.Equal(t, DocumentType, first.Reference.Type)
	assert.Equal(t, 1, first.Reference.Version)

	// Each line keeps its own price.
	assert.True(t, set.Stock[1].CostPerUnit.Equal(types.MustMoney("10")))
}

func TestGenerateMovements_BadCompanyID(t *testing.T) {
	gr := NewGoodsReceipt("not-a-uuid", id.New())
	gr.AddLine(id.New(), qty(1), types.MustMoney("1"))

	_, err := gr.GenerateMovements(context.Background())
	assert.Error(t, err)
}
