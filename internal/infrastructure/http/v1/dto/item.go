package dto

import (
	"github.com/shopspring/decimal"

	"plantops/internal/domain/catalogs/item"
)

// --- Request DTOs ---

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Code              string           `json:"code"`
	Name              string           `json:"name" binding:"required"`
	Type              item.ItemType    `json:"type" binding:"required"`
	Article           *string          `json:"article"`
	Barcode           *string          `json:"barcode"`
	BaseUnitID        *string          `json:"baseUnitId"`
	StandardCost      *decimal.Decimal `json:"standardCost"`
	ManufacturingCost *decimal.Decimal `json:"manufacturingCost"`
	Description       *string          `json:"description"`
	ParentID          *string          `json:"parentId"`
	IsFolder          bool             `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.NewItem(r.Code, r.Name, r.Type)
	it.Article = r.Article
	it.Barcode = r.Barcode
	it.BaseUnitID = r.BaseUnitID
	it.StandardCost = r.StandardCost
	it.ManufacturingCost = r.ManufacturingCost
	it.Description = r.Description
	it.ParentID = r.ParentID
	it.IsFolder = r.IsFolder
	return it
}

// UpdateItemRequest is the request body for updating an item.
type UpdateItemRequest struct {
	Code              string           `json:"code"`
	Name              string           `json:"name" binding:"required"`
	Type              item.ItemType    `json:"type" binding:"required"`
	Article           *string          `json:"article"`
	Barcode           *string          `json:"barcode"`
	BaseUnitID        *string          `json:"baseUnitId"`
	StandardCost      *decimal.Decimal `json:"standardCost"`
	ManufacturingCost *decimal.Decimal `json:"manufacturingCost"`
	Description       *string          `json:"description"`
	ParentID          *string          `json:"parentId"`
	IsFolder          bool             `json:"isFolder"`
	Version           int              `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. LastPurchasePrice is
// deliberately not settable here; only goods receipt posting moves it.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	it.Code = r.Code
	it.Name = r.Name
	it.Type = r.Type
	it.Article = r.Article
	it.Barcode = r.Barcode
	it.BaseUnitID = r.BaseUnitID
	it.StandardCost = r.StandardCost
	it.ManufacturingCost = r.ManufacturingCost
	it.Description = r.Description
	it.ParentID = r.ParentID
	it.IsFolder = r.IsFolder
	it.Version = r.Version
}

// --- Response DTOs ---

// ItemResponse is the response body for an item.
type ItemResponse struct {
	ID                string           `json:"id"`
	Code              string           `json:"code"`
	Name              string           `json:"name"`
	Type              item.ItemType    `json:"type"`
	Article           *string          `json:"article,omitempty"`
	Barcode           *string          `json:"barcode,omitempty"`
	BaseUnitID        *string          `json:"baseUnitId,omitempty"`
	LastPurchasePrice *decimal.Decimal `json:"lastPurchasePrice,omitempty"`
	StandardCost      *decimal.Decimal `json:"standardCost,omitempty"`
	ManufacturingCost *decimal.Decimal `json:"manufacturingCost,omitempty"`
	Description       *string          `json:"description,omitempty"`
	ParentID          *string          `json:"parentId,omitempty"`
	IsFolder          bool             `json:"isFolder"`
	DeletionMark      bool             `json:"deletionMark"`
	Version           int              `json:"version"`
}

// FromItem creates response DTO from domain entity.
func FromItem(it *item.Item) *ItemResponse {
	return &ItemResponse{
		ID:                it.ID.String(),
		Code:              it.Code,
		Name:              it.Name,
		Type:              it.Type,
		Article:           it.Article,
		Barcode:           it.Barcode,
		BaseUnitID:        it.BaseUnitID,
		LastPurchasePrice: it.LastPurchasePrice,
		StandardCost:      it.StandardCost,
		ManufacturingCost: it.ManufacturingCost,
		Description:       it.Description,
		ParentID:          it.ParentID,
		IsFolder:          it.IsFolder,
		DeletionMark:      it.DeletionMark,
		Version:           it.Version,
	}
}
