// Package bom provides versioned bills of materials.
// A BOM lists the raw material quantities needed to produce one unit of a
// finished item; production start explodes it by the planned quantity.
package bom

import (
	"context"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

// BOM is a bill of materials for one finished item.
// Several versions may exist per item; at most one is active at a time.
type BOM struct {
	entity.Catalog

	// FinishedItemID is the finished item this BOM produces
	FinishedItemID string `db:"finished_item_id" json:"finishedItemId"`

	// BOMVersion orders revisions of the same item's BOM
	BOMVersion int `db:"bom_version" json:"bomVersion"`

	// IsActive marks the version used by new production runs
	IsActive bool `db:"is_active" json:"isActive"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`

	// Lines are the raw material requirements (loaded separately)
	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one raw material requirement per unit of finished output.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	BOMID  id.ID `db:"bom_id" json:"bomId"`

	// RawItemID must reference an item of type RAW
	RawItemID string `db:"raw_item_id" json:"rawItemId"`

	// Quantity of raw material per one unit of finished output
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// LineNumber preserves user ordering
	LineNumber int `db:"line_number" json:"lineNumber"`

	Notes *string `db:"notes" json:"notes,omitempty"`
}

// NewBOM creates a new BOM version for a finished item.
func NewBOM(code, name, finishedItemID string, version int) *BOM {
	return &BOM{
		Catalog:        entity.NewCatalog(code, name),
		FinishedItemID: finishedItemID,
		BOMVersion:     version,
		IsActive:       true,
	}
}

// Validate implements entity.Validatable interface.
func (b *BOM) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}

	if b.FinishedItemID == "" {
		return apperror.NewValidation("finished item is required").
			WithDetail("field", "finishedItemId")
	}

	if b.BOMVersion < 1 {
		return apperror.NewValidation("version must be at least 1").
			WithDetail("field", "version")
	}

	for i, line := range b.Lines {
		if line.RawItemID == "" {
			return apperror.NewValidation("raw item is required").
				WithDetail("line", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i+1).
				WithDetail("rawItemId", line.RawItemID)
		}
	}

	return nil
}

// RequiredQuantity returns the total raw quantity for plannedQty units of
// finished output on the given line.
func (l Line) RequiredQuantity(plannedQty types.Quantity) types.Quantity {
	return types.NewQuantityFromDecimal(l.Quantity.Decimal().Mul(plannedQty.Decimal()))
}
