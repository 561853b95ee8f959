// Package orders holds the sales-order surface that production interacts
// with: order lines that accumulate produced quantities and raw costs, and
// raw-material reservations released when a run starts.
package orders

import (
	"time"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

// SalesOrderLine is one finished-goods line of a customer order, tracked
// here only as far as production needs it.
type SalesOrderLine struct {
	LineID      id.ID  `db:"line_id" json:"lineId"`
	OrderNumber string `db:"order_number" json:"orderNumber"`
	CompanyID   string `db:"company_id" json:"companyId"`

	// ItemID must reference a FINISHED item
	ItemID string `db:"item_id" json:"itemId"`

	// Quantity is the ordered quantity
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ProducedQty accumulates good output across production closes
	ProducedQty types.Quantity `db:"produced_qty" json:"producedQty"`

	// ScrapQty accumulates reject and scrap output
	ScrapQty types.Quantity `db:"scrap_qty" json:"scrapQty"`

	// ExpectedRawCost and ActualRawCost accumulate production material
	// costs for margin reporting
	ExpectedRawCost types.Money `db:"expected_raw_cost" json:"expectedRawCost"`
	ActualRawCost   types.Money `db:"actual_raw_cost" json:"actualRawCost"`

	DueDate   *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// Remaining returns the quantity still to produce.
func (l *SalesOrderLine) Remaining() types.Quantity {
	rem := l.Quantity - l.ProducedQty
	if rem < 0 {
		return 0
	}
	return rem
}

// RawReservation is a standing hold of raw material for an order line,
// released before production issues the stock.
type RawReservation struct {
	ReservationID id.ID          `db:"reservation_id" json:"reservationId"`
	LineID        id.ID          `db:"line_id" json:"lineId"`
	ItemID        string         `db:"item_id" json:"itemId"`
	ZoneID        string         `db:"zone_id" json:"zoneId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}
