package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/documents/goods_receipt"
)

// --- Request DTOs ---

// GoodsReceiptLineRequest represents a line in create/update requests.
type GoodsReceiptLineRequest struct {
	ItemID    string          `json:"itemId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateGoodsReceiptRequest represents a request to create a goods receipt.
type CreateGoodsReceiptRequest struct {
	Number            string                    `json:"number,omitempty"`
	Date              time.Time                 `json:"date" binding:"required"`
	CompanyID         string                    `json:"companyId" binding:"required"`
	SupplierName      string                    `json:"supplierName" binding:"required"`
	ZoneID            string                    `json:"zoneId" binding:"required"`
	SupplierDocNumber string                    `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time                `json:"supplierDocDate,omitempty"`
	Comment           string                    `json:"comment,omitempty"`
	Lines             []GoodsReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately   bool                      `json:"postImmediately,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateGoodsReceiptRequest) ToEntity() *goods_receipt.GoodsReceipt {
	zoneID, _ := id.Parse(r.ZoneID)

	doc := goods_receipt.NewGoodsReceipt(r.CompanyID, zoneID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.SupplierName = r.SupplierName
	doc.SupplierDocNumber = r.SupplierDocNumber
	doc.SupplierDocDate = r.SupplierDocDate
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		itemID, _ := id.Parse(line.ItemID)
		doc.AddLine(itemID, types.NewQuantityFromDecimal(line.Quantity), line.UnitPrice)
	}

	return doc
}

// UpdateGoodsReceiptRequest represents a request to update a goods receipt.
type UpdateGoodsReceiptRequest struct {
	Number            *string                   `json:"number,omitempty"`
	Date              *time.Time                `json:"date,omitempty"`
	SupplierName      *string                   `json:"supplierName,omitempty"`
	ZoneID            *string                   `json:"zoneId,omitempty"`
	SupplierDocNumber *string                   `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time                `json:"supplierDocDate,omitempty"`
	Comment           *string                   `json:"comment,omitempty"`
	Lines             []GoodsReceiptLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateGoodsReceiptRequest) ApplyTo(doc *goods_receipt.GoodsReceipt) {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.SupplierName != nil {
		doc.SupplierName = *r.SupplierName
	}
	if r.ZoneID != nil {
		zoneID, _ := id.Parse(*r.ZoneID)
		doc.ZoneID = zoneID
	}
	if r.SupplierDocNumber != nil {
		doc.SupplierDocNumber = *r.SupplierDocNumber
	}
	if r.SupplierDocDate != nil {
		doc.SupplierDocDate = r.SupplierDocDate
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	// If lines are provided, rebuild them
	if r.Lines != nil {
		doc.Lines = doc.Lines[:0]
		for _, line := range r.Lines {
			itemID, _ := id.Parse(line.ItemID)
			doc.AddLine(itemID, types.NewQuantityFromDecimal(line.Quantity), line.UnitPrice)
		}
	}
}

// --- Response DTOs ---

// GoodsReceiptLineResponse represents a line in API responses.
type GoodsReceiptLineResponse struct {
	LineID    string          `json:"lineId"`
	LineNo    int             `json:"lineNo"`
	ItemID    string          `json:"itemId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

// GoodsReceiptResponse represents a goods receipt in API responses.
type GoodsReceiptResponse struct {
	ID                string                     `json:"id"`
	Number            string                     `json:"number"`
	Date              time.Time                  `json:"date"`
	Posted            bool                       `json:"posted"`
	PostedVersion     int                        `json:"postedVersion,omitempty"`
	CompanyID         string                     `json:"companyId"`
	SupplierName      string                     `json:"supplierName"`
	ZoneID            string                     `json:"zoneId"`
	SupplierDocNumber string                     `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time                 `json:"supplierDocDate,omitempty"`
	TotalQuantity     decimal.Decimal            `json:"totalQuantity"`
	TotalAmount       decimal.Decimal            `json:"totalAmount"`
	Comment           string                     `json:"comment,omitempty"`
	Lines             []GoodsReceiptLineResponse `json:"lines,omitempty"`
	DeletionMark      bool                       `json:"deletionMark,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
}

// FromGoodsReceipt converts domain entity to response DTO.
func FromGoodsReceipt(doc *goods_receipt.GoodsReceipt) *GoodsReceiptResponse {
	resp := &GoodsReceiptResponse{
		ID:                doc.ID.String(),
		Number:            doc.Number,
		Date:              doc.Date,
		Posted:            doc.Posted,
		PostedVersion:     doc.PostedVersion,
		CompanyID:         doc.CompanyID,
		SupplierName:      doc.SupplierName,
		ZoneID:            doc.ZoneID.String(),
		SupplierDocNumber: doc.SupplierDocNumber,
		SupplierDocDate:   doc.SupplierDocDate,
		TotalQuantity:     doc.TotalQuantity.Decimal(),
		TotalAmount:       doc.TotalAmount,
		Comment:           doc.Comment,
		DeletionMark:      doc.DeletionMark,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}

	resp.Lines = make([]GoodsReceiptLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = GoodsReceiptLineResponse{
			LineID:    line.LineID.String(),
			LineNo:    line.LineNo,
			ItemID:    line.ItemID.String(),
			Quantity:  line.Quantity.Decimal(),
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount,
		}
	}

	return resp
}

// GoodsReceiptListResponse represents a list of goods receipts.
type GoodsReceiptListResponse struct {
	Items      []*GoodsReceiptResponse `json:"items"`
	TotalCount int                     `json:"totalCount"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}
