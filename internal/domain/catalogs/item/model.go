// Package item provides the Item catalog: the SKUs moved through the stock
// ledger and produced by production runs.
package item

import (
	"context"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/types"
)

// ItemType defines the costing category of an item.
// WIP is not an item type: it is implied by the zone the stock sits in.
type ItemType string

const (
	TypeRaw      ItemType = "RAW"      // purchased material consumed by production
	TypeFinished ItemType = "FINISHED" // produced output
)

// Item represents a stock-keeping unit.
//
// The three cost fields feed the valuation resolver. Each is nullable:
// nil means "no cost basis of that kind is known", which is a hard error
// when the configured valuation method needs it.
type Item struct {
	entity.Catalog

	// Type defines the costing category
	Type ItemType `db:"type" json:"type"`

	// Article is the item article/SKU code
	Article *string `db:"article" json:"article,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// BaseUnitID is the reference to base unit of measure
	BaseUnitID *string `db:"base_unit_id" json:"baseUnitId,omitempty"`

	// LastPurchasePrice is updated by goods receipt posting
	LastPurchasePrice *types.Money `db:"last_purchase_price" json:"lastPurchasePrice,omitempty"`

	// StandardCost is the planner-maintained standard unit cost
	StandardCost *types.Money `db:"standard_cost" json:"standardCost,omitempty"`

	// ManufacturingCost is the calculated cost of producing one unit
	ManufacturingCost *types.Money `db:"manufacturing_cost" json:"manufacturingCost,omitempty"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name string, itemType ItemType) *Item {
	return &Item{
		Catalog: entity.NewCatalog(code, name),
		Type:    itemType,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidItemType(i.Type) {
		return apperror.NewValidation("invalid item type").
			WithDetail("field", "type").
			WithDetail("value", string(i.Type))
	}

	for field, cost := range map[string]*types.Money{
		"lastPurchasePrice": i.LastPurchasePrice,
		"standardCost":      i.StandardCost,
		"manufacturingCost": i.ManufacturingCost,
	} {
		if cost != nil && cost.IsNegative() {
			return apperror.NewValidation("cost cannot be negative").
				WithDetail("field", field)
		}
	}

	return nil
}

// IsRaw returns true for purchased materials.
func (i *Item) IsRaw() bool {
	return i.Type == TypeRaw
}

// SetLastPurchasePrice records the most recent purchase price.
func (i *Item) SetLastPurchasePrice(price types.Money) {
	i.LastPurchasePrice = &price
	i.Touch()
}

func isValidItemType(t ItemType) bool {
	switch t {
	case TypeRaw, TypeFinished:
		return true
	}
	return false
}
