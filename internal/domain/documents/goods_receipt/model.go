// Package goods_receipt provides the GoodsReceipt document.
package goods_receipt

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

// DocumentType identifies goods receipts in movement references.
const DocumentType = "GOODS_RECEIPT"

// GoodsReceipt records incoming goods from a supplier into a zone.
// Posting it books RECEIPT movements at the purchase price, which feeds the
// LAST_PRICE valuation method.
type GoodsReceipt struct {
	entity.Document

	// SupplierName is free-form; supplier master data lives outside this
	// module
	SupplierName string `db:"supplier_name" json:"supplierName"`

	// Zone where goods are received
	ZoneID id.ID `db:"zone_id" json:"zoneId"`

	// Supplier's document reference
	SupplierDocNumber string     `db:"supplier_doc_number" json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time `db:"supplier_doc_date" json:"supplierDocDate,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part: received goods
	Lines []GoodsReceiptLine `db:"-" json:"lines"`
}

// GoodsReceiptLine represents a line in the goods receipt.
type GoodsReceiptLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Item reference
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity and purchase price per unit
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// NewGoodsReceipt creates a new goods receipt document.
func NewGoodsReceipt(companyID string, zoneID id.ID) *GoodsReceipt {
	return &GoodsReceipt{
		Document:    entity.NewDocument(companyID),
		ZoneID:      zoneID,
		TotalAmount: types.Zero(),
		Lines:       make([]GoodsReceiptLine, 0),
	}
}

// AddLine adds a line to the goods receipt and recalculates totals.
func (g *GoodsReceipt) AddLine(itemID id.ID, quantity types.Quantity, unitPrice types.Money) {
	line := GoodsReceiptLine{
		LineID:    id.New(),
		LineNo:    len(g.Lines) + 1,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    quantity.Cost(unitPrice),
	}

	g.Lines = append(g.Lines, line)
	g.recalculateTotals()
}

// recalculateTotals updates document totals from lines.
func (g *GoodsReceipt) recalculateTotals() {
	g.TotalQuantity = 0
	g.TotalAmount = types.Zero()

	for _, line := range g.Lines {
		g.TotalQuantity += line.Quantity
		g.TotalAmount = g.TotalAmount.Add(line.Amount)
	}
}

// Validate implements entity.Validatable.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(g.ZoneID) {
		return apperror.NewValidation("zone is required").
			WithDetail("field", "zoneId")
	}

	if len(g.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range g.Lines {
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
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---
// GetID, GetDate, GetPostedVersion, IsPosted, CanPost are inherited from
// entity.Document.

// GetDocumentType returns the document type name.
func (g *GoodsReceipt) GetDocumentType() string {
	return DocumentType
}

// GenerateMovements books each line as an inbound RECEIPT at its purchase
// price. The explicit cost wins over the company valuation method.
func (g *GoodsReceipt) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()

	companyID, err := id.Parse(g.CompanyID)
	if err != nil {
		return nil, apperror.NewValidation("invalid company id").
			WithDetail("companyId", g.CompanyID)
	}

	ref := entity.NewReference(DocumentType, g.ID, g.PostedVersion)

	for _, line := range g.Lines {
		price := line.UnitPrice
		movements.AddStock(ledger.MovementInput{
			CompanyID:    companyID,
			ItemID:       line.ItemID,
			ZoneID:       g.ZoneID,
			Direction:    entity.DirectionIn,
			MovementType: entity.MovementTypeReceipt,
			Quantity:     line.Quantity,
			CostPerUnit:  &price,
			Reference:    ref,
			Notes:        "receipt " + g.Number,
			Period:       g.Date,
		})
	}

	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*GoodsReceipt)(nil)
