// Package entity provides core domain entities.
package entity

import (
	"time"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

// Direction defines which way a stock movement goes.
type Direction string

const (
	// DirectionIn increases the balance
	DirectionIn Direction = "in"
	// DirectionOut decreases the balance
	DirectionOut Direction = "out"
)

// MovementType classifies the business reason for a movement.
type MovementType string

const (
	MovementTypeReceipt    MovementType = "RECEIPT"
	MovementTypeIssue      MovementType = "ISSUE"
	MovementTypeTransfer   MovementType = "TRANSFER"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	MovementTypeProduce    MovementType = "PRODUCE"
	MovementTypeScrapSale  MovementType = "SCRAP_SALE"
)

// MaterialClass groups items for valuation purposes.
// Zone type WIP forces the WIP class regardless of the item type.
type MaterialClass string

const (
	MaterialClassRaw      MaterialClass = "raw"
	MaterialClassFinished MaterialClass = "finished"
	MaterialClassWIP      MaterialClass = "wip"
)

// Reference points at the business document that caused a movement,
// e.g. a production log, goods receipt or delivery.
type Reference struct {
	// Type is the document type (e.g. "PROD_LOG", "GoodsReceipt")
	Type string `db:"reference_type" json:"referenceType,omitempty"`

	// ID is the document identifier
	ID *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	// Version is the posting iteration that produced the movement.
	// Lets an unpost target exactly the movements of one posting cycle.
	Version int `db:"reference_version" json:"referenceVersion,omitempty"`
}

// NewReference builds a reference to a recorder document.
func NewReference(refType string, refID id.ID, version int) Reference {
	return Reference{Type: refType, ID: &refID, Version: version}
}

// IsZero reports whether no reference is attached.
func (r Reference) IsZero() bool {
	return r.Type == "" && r.ID == nil
}

// StockMovement is one row of the stock ledger.
// Movements are immutable - they are never updated or deleted once written.
type StockMovement struct {
	// LineID is unique identifier for this ledger line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// Dimensions
	CompanyID id.ID `db:"company_id" json:"companyId"`
	ItemID    id.ID `db:"item_id" json:"itemId"`
	ZoneID    id.ID `db:"zone_id" json:"zoneId"`

	Direction    Direction    `db:"direction" json:"direction"`
	MovementType MovementType `db:"movement_type" json:"movementType"`

	// Resources. Quantity is always positive; Direction carries the sign.
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	CostPerUnit types.Money    `db:"cost_per_unit" json:"costPerUnit"`
	TotalCost   types.Money    `db:"total_cost" json:"totalCost"`

	Reference

	Notes string `db:"notes" json:"notes,omitempty"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a ledger line with generated LineID.
// CostPerUnit and TotalCost are filled in by the recorder.
func NewStockMovement(
	companyID, itemID, zoneID id.ID,
	direction Direction,
	movementType MovementType,
	quantity types.Quantity,
	period time.Time,
) StockMovement {
	return StockMovement{
		LineID:       id.New(),
		CompanyID:    companyID,
		ItemID:       itemID,
		ZoneID:       zoneID,
		Direction:    direction,
		MovementType: movementType,
		Quantity:     quantity,
		Period:       period,
		CreatedAt:    time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on direction.
// In = positive, Out = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// SignedCost returns the total cost with sign based on direction.
func (m *StockMovement) SignedCost() types.Money {
	if m.Direction == DirectionOut {
		return m.TotalCost.Neg()
	}
	return m.TotalCost
}

// StockBalance is the current state per (company, item, zone).
// Created on the first inbound movement and never deleted; a zero-quantity
// row is the "known empty" state. Owned exclusively by the movement recorder.
type StockBalance struct {
	// Dimensions
	CompanyID id.ID `db:"company_id" json:"companyId"`
	ItemID    id.ID `db:"item_id" json:"itemId"`
	ZoneID    id.ID `db:"zone_id" json:"zoneId"`

	// Balances. TotalCost = QuantityOnHand x CostPerUnit, reconciled on
	// every write.
	QuantityOnHand types.Quantity `db:"quantity_on_hand" json:"quantityOnHand"`
	CostPerUnit    types.Money    `db:"cost_per_unit" json:"costPerUnit"`
	TotalCost      types.Money    `db:"total_cost" json:"totalCost"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// EmptyBalance returns the zero balance for a triple that has no row yet.
func EmptyBalance(companyID, itemID, zoneID id.ID) StockBalance {
	return StockBalance{
		CompanyID:   companyID,
		ItemID:      itemID,
		ZoneID:      zoneID,
		CostPerUnit: types.Zero(),
		TotalCost:   types.Zero(),
	}
}

// IsEmpty reports whether the zone holds no stock of the item.
func (b *StockBalance) IsEmpty() bool {
	return b.QuantityOnHand.IsZero()
}
