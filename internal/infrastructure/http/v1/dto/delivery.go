package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/documents/delivery"
)

// --- Request DTOs ---

// DeliveryLineRequest represents a line in create/update requests.
type DeliveryLineRequest struct {
	ItemID    string          `json:"itemId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	SalePrice decimal.Decimal `json:"salePrice" binding:"required"`
}

// CreateDeliveryRequest represents a request to create a delivery.
type CreateDeliveryRequest struct {
	Number              string                `json:"number,omitempty"`
	Date                time.Time             `json:"date" binding:"required"`
	CompanyID           string                `json:"companyId" binding:"required"`
	Kind                string                `json:"kind" binding:"required,oneof=DELIVERY SCRAP_SALE"`
	CustomerName        string                `json:"customerName" binding:"required"`
	ZoneID              string                `json:"zoneId" binding:"required"`
	SalesOrderLineID    *string               `json:"salesOrderLineId,omitempty"`
	CustomerOrderNumber string                `json:"customerOrderNumber,omitempty"`
	CustomerOrderDate   *time.Time            `json:"customerOrderDate,omitempty"`
	Comment             string                `json:"comment,omitempty"`
	Lines               []DeliveryLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately     bool                  `json:"postImmediately,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateDeliveryRequest) ToEntity() *delivery.Delivery {
	zoneID, _ := id.Parse(r.ZoneID)

	doc := delivery.NewDelivery(r.CompanyID, zoneID, delivery.Kind(r.Kind))
	doc.Number = r.Number
	doc.Date = r.Date
	doc.CustomerName = r.CustomerName
	doc.CustomerOrderNumber = r.CustomerOrderNumber
	doc.CustomerOrderDate = r.CustomerOrderDate
	doc.Comment = r.Comment

	if r.SalesOrderLineID != nil {
		if lineID, err := id.Parse(*r.SalesOrderLineID); err == nil {
			doc.SalesOrderLineID = &lineID
		}
	}

	for _, line := range r.Lines {
		itemID, _ := id.Parse(line.ItemID)
		doc.AddLine(itemID, types.NewQuantityFromDecimal(line.Quantity), line.SalePrice)
	}

	return doc
}

// UpdateDeliveryRequest represents a request to update a delivery.
type UpdateDeliveryRequest struct {
	Number              *string               `json:"number,omitempty"`
	Date                *time.Time            `json:"date,omitempty"`
	CustomerName        *string               `json:"customerName,omitempty"`
	ZoneID              *string               `json:"zoneId,omitempty"`
	SalesOrderLineID    *string               `json:"salesOrderLineId,omitempty"`
	CustomerOrderNumber *string               `json:"customerOrderNumber,omitempty"`
	CustomerOrderDate   *time.Time            `json:"customerOrderDate,omitempty"`
	Comment             *string               `json:"comment,omitempty"`
	Lines               []DeliveryLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity. Kind is immutable once
// the document exists.
func (r *UpdateDeliveryRequest) ApplyTo(doc *delivery.Delivery) {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerName != nil {
		doc.CustomerName = *r.CustomerName
	}
	if r.ZoneID != nil {
		zoneID, _ := id.Parse(*r.ZoneID)
		doc.ZoneID = zoneID
	}
	if r.SalesOrderLineID != nil {
		if lineID, err := id.Parse(*r.SalesOrderLineID); err == nil {
			doc.SalesOrderLineID = &lineID
		}
	}
	if r.CustomerOrderNumber != nil {
		doc.CustomerOrderNumber = *r.CustomerOrderNumber
	}
	if r.CustomerOrderDate != nil {
		doc.CustomerOrderDate = r.CustomerOrderDate
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	if r.Lines != nil {
		doc.Lines = doc.Lines[:0]
		for _, line := range r.Lines {
			itemID, _ := id.Parse(line.ItemID)
			doc.AddLine(itemID, types.NewQuantityFromDecimal(line.Quantity), line.SalePrice)
		}
	}
}

// --- Response DTOs ---

// DeliveryLineResponse represents a line in API responses.
type DeliveryLineResponse struct {
	LineID    string          `json:"lineId"`
	LineNo    int             `json:"lineNo"`
	ItemID    string          `json:"itemId"`
	Quantity  decimal.Decimal `json:"quantity"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Amount    decimal.Decimal `json:"amount"`
}

// DeliveryResponse represents a delivery in API responses.
type DeliveryResponse struct {
	ID                  string                 `json:"id"`
	Number              string                 `json:"number"`
	Date                time.Time              `json:"date"`
	Posted              bool                   `json:"posted"`
	PostedVersion       int                    `json:"postedVersion,omitempty"`
	CompanyID           string                 `json:"companyId"`
	Kind                string                 `json:"kind"`
	CustomerName        string                 `json:"customerName"`
	ZoneID              string                 `json:"zoneId"`
	SalesOrderLineID    *string                `json:"salesOrderLineId,omitempty"`
	CustomerOrderNumber string                 `json:"customerOrderNumber,omitempty"`
	CustomerOrderDate   *time.Time             `json:"customerOrderDate,omitempty"`
	TotalQuantity       decimal.Decimal        `json:"totalQuantity"`
	TotalAmount         decimal.Decimal        `json:"totalAmount"`
	Comment             string                 `json:"comment,omitempty"`
	Lines               []DeliveryLineResponse `json:"lines,omitempty"`
	DeletionMark        bool                   `json:"deletionMark,omitempty"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

// FromDelivery converts domain entity to response DTO.
func FromDelivery(doc *delivery.Delivery) *DeliveryResponse {
	resp := &DeliveryResponse{
		ID:                  doc.ID.String(),
		Number:              doc.Number,
		Date:                doc.Date,
		Posted:              doc.Posted,
		PostedVersion:       doc.PostedVersion,
		CompanyID:           doc.CompanyID,
		Kind:                string(doc.Kind),
		CustomerName:        doc.CustomerName,
		ZoneID:              doc.ZoneID.String(),
		CustomerOrderNumber: doc.CustomerOrderNumber,
		CustomerOrderDate:   doc.CustomerOrderDate,
		TotalQuantity:       doc.TotalQuantity.Decimal(),
		TotalAmount:         doc.TotalAmount,
		Comment:             doc.Comment,
		DeletionMark:        doc.DeletionMark,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}

	if doc.SalesOrderLineID != nil {
		s := doc.SalesOrderLineID.String()
		resp.SalesOrderLineID = &s
	}

	resp.Lines = make([]DeliveryLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = DeliveryLineResponse{
			LineID:    line.LineID.String(),
			LineNo:    line.LineNo,
			ItemID:    line.ItemID.String(),
			Quantity:  line.Quantity.Decimal(),
			SalePrice: line.SalePrice,
			Amount:    line.Amount,
		}
	}

	return resp
}

// DeliveryListResponse represents a list of deliveries.
type DeliveryListResponse struct {
	Items      []*DeliveryResponse `json:"items"`
	TotalCount int                 `json:"totalCount"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
