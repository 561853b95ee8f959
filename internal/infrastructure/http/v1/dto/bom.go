package dto

import (
	"github.com/shopspring/decimal"

	"plantops/internal/core/types"
	"plantops/internal/domain/bom"
)

// --- Request DTOs ---

// BOMLineRequest is one raw-material line of a bill of materials.
type BOMLineRequest struct {
	RawItemID string          `json:"rawItemId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Notes     *string         `json:"notes"`
}

// CreateBOMRequest is the request body for creating a BOM.
type CreateBOMRequest struct {
	Code           string           `json:"code"`
	Name           string           `json:"name" binding:"required"`
	FinishedItemID string           `json:"finishedItemId" binding:"required"`
	Version        int              `json:"bomVersion"`
	IsActive       bool             `json:"isActive"`
	Description    *string          `json:"description"`
	Lines          []BOMLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBOMRequest) ToEntity() *bom.BOM {
	b := bom.NewBOM(r.Code, r.Name, r.FinishedItemID, r.Version)
	b.IsActive = r.IsActive
	b.Description = r.Description
	for i, line := range r.Lines {
		b.Lines = append(b.Lines, bom.Line{
			RawItemID:  line.RawItemID,
			Quantity:   types.NewQuantityFromDecimal(line.Quantity),
			LineNumber: i + 1,
			Notes:      line.Notes,
		})
	}
	return b
}

// UpdateBOMRequest is the request body for updating a BOM.
type UpdateBOMRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name" binding:"required"`
	IsActive    bool             `json:"isActive"`
	Description *string          `json:"description"`
	Lines       []BOMLineRequest `json:"lines" binding:"required"`
	Version     int              `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. The finished item and
// BOM version are immutable; a new recipe revision is a new BOM.
func (r *UpdateBOMRequest) ApplyTo(b *bom.BOM) {
	b.Code = r.Code
	b.Name = r.Name
	b.IsActive = r.IsActive
	b.Description = r.Description
	b.Version = r.Version

	b.Lines = b.Lines[:0]
	for i, line := range r.Lines {
		b.Lines = append(b.Lines, bom.Line{
			BOMID:      b.ID,
			RawItemID:  line.RawItemID,
			Quantity:   types.NewQuantityFromDecimal(line.Quantity),
			LineNumber: i + 1,
			Notes:      line.Notes,
		})
	}
}

// --- Response DTOs ---

// BOMLineResponse is one raw-material line of a bill of materials.
type BOMLineResponse struct {
	LineID     string          `json:"lineId"`
	RawItemID  string          `json:"rawItemId"`
	Quantity   decimal.Decimal `json:"quantity"`
	LineNumber int             `json:"lineNumber"`
	Notes      *string         `json:"notes,omitempty"`
}

// BOMResponse is the response body for a BOM.
type BOMResponse struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	FinishedItemID string            `json:"finishedItemId"`
	BOMVersion     int               `json:"bomVersion"`
	IsActive       bool              `json:"isActive"`
	Description    *string           `json:"description,omitempty"`
	Lines          []BOMLineResponse `json:"lines"`
	DeletionMark   bool              `json:"deletionMark"`
	Version        int               `json:"version"`
}

// FromBOM creates response DTO from domain entity.
func FromBOM(b *bom.BOM) *BOMResponse {
	resp := &BOMResponse{
		ID:             b.ID.String(),
		Code:           b.Code,
		Name:           b.Name,
		FinishedItemID: b.FinishedItemID,
		BOMVersion:     b.BOMVersion,
		IsActive:       b.IsActive,
		Description:    b.Description,
		DeletionMark:   b.DeletionMark,
		Version:        b.Version,
	}
	for _, line := range b.Lines {
		resp.Lines = append(resp.Lines, BOMLineResponse{
			LineID:     line.LineID.String(),
			RawItemID:  line.RawItemID,
			Quantity:   line.Quantity.Decimal(),
			LineNumber: line.LineNumber,
			Notes:      line.Notes,
		})
	}
	return resp
}
