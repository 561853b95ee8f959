// Package delivery provides the Delivery document: outgoing goods shipped
// to a customer, or scrap sold off. Posting books ISSUE (or SCRAP_SALE)
// movements at the zone's book cost.
package delivery

import (
	"context"
	"time"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/ledger"
	"plantops/internal/domain/posting"
)

// DocumentType identifies deliveries in movement references.
const DocumentType = "DELIVERY"

// Kind selects what leaves the zone.
type Kind string

const (
	// KindDelivery ships finished goods to a customer
	KindDelivery Kind = "DELIVERY"
	// KindScrapSale sells off scrap output
	KindScrapSale Kind = "SCRAP_SALE"
)

// Delivery represents an outgoing shipment from a zone.
// Stock leaves at book cost; the sale price is recorded for reporting only.
type Delivery struct {
	entity.Document

	Kind Kind `db:"kind" json:"kind"`

	// CustomerName is free-form; customer master data lives outside this
	// module
	CustomerName string `db:"customer_name" json:"customerName"`

	// Zone from which goods are shipped
	ZoneID id.ID `db:"zone_id" json:"zoneId"`

	// SalesOrderLineID links the shipment to an order line, if any
	SalesOrderLineID *id.ID `db:"sales_order_line_id" json:"salesOrderLineId,omitempty"`

	// Customer order reference
	CustomerOrderNumber string     `db:"customer_order_number" json:"customerOrderNumber,omitempty"`
	CustomerOrderDate   *time.Time `db:"customer_order_date" json:"customerOrderDate,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part: shipped goods
	Lines []DeliveryLine `db:"-" json:"lines"`
}

// DeliveryLine represents a line in the delivery.
type DeliveryLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// SalePrice is the agreed price per unit; it does not affect stock
	// valuation
	SalePrice types.Money `db:"sale_price" json:"salePrice"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// NewDelivery creates a new delivery document.
func NewDelivery(companyID string, zoneID id.ID, kind Kind) *Delivery {
	return &Delivery{
		Document:    entity.NewDocument(companyID),
		Kind:        kind,
		ZoneID:      zoneID,
		TotalAmount: types.Zero(),
		Lines:       make([]DeliveryLine, 0),
	}
}

// AddLine adds a line to the delivery and recalculates totals.
func (d *Delivery) AddLine(itemID id.ID, quantity types.Quantity, salePrice types.Money) {
	line := DeliveryLine{
		LineID:    id.New(),
		LineNo:    len(d.Lines) + 1,
		ItemID:    itemID,
		Quantity:  quantity,
		SalePrice: salePrice,
		Amount:    quantity.Cost(salePrice),
	}

	d.Lines = append(d.Lines, line)
	d.recalculateTotals()
}

func (d *Delivery) recalculateTotals() {
	d.TotalQuantity = 0
	d.TotalAmount = types.Zero()

	for _, line := range d.Lines {
		d.TotalQuantity += line.Quantity
		d.TotalAmount = d.TotalAmount.Add(line.Amount)
	}
}

// Validate implements entity.Validatable.
func (d *Delivery) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if d.Kind != KindDelivery && d.Kind != KindScrapSale {
		return apperror.NewValidation("invalid delivery kind").
			WithDetail("value", string(d.Kind))
	}

	if id.IsNil(d.ZoneID) {
		return apperror.NewValidation("zone is required").
			WithDetail("field", "zoneId")
	}

	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range d.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.SalePrice.IsNegative() {
			return apperror.NewValidation("sale price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---

// GetDocumentType returns the document type name.
func (d *Delivery) GetDocumentType() string {
	return DocumentType
}

// GenerateMovements books each line as an outbound movement. No explicit
// cost is set, so the recorder charges the zone's current book cost.
func (d *Delivery) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()

	companyID, err := id.Parse(d.CompanyID)
	if err != nil {
		return nil, apperror.NewValidation("invalid company id").
			WithDetail("companyId", d.CompanyID)
	}

	movementType := entity.MovementTypeIssue
	if d.Kind == KindScrapSale {
		movementType = entity.MovementTypeScrapSale
	}

	ref := entity.NewReference(DocumentType, d.ID, d.PostedVersion)

	for _, line := range d.Lines {
		movements.AddStock(ledger.MovementInput{
			CompanyID:    companyID,
			ItemID:       line.ItemID,
			ZoneID:       d.ZoneID,
			Direction:    entity.DirectionOut,
			MovementType: movementType,
			Quantity:     line.Quantity,
			Reference:    ref,
			Notes:        "delivery " + d.Number,
			Period:       d.Date,
		})
	}

	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*Delivery)(nil)
