package dto

import (
	"plantops/internal/core/entity"
	"plantops/internal/domain/catalogs/zone"
)

// --- Request DTOs ---

// CreateZoneRequest is the request body for creating a zone.
type CreateZoneRequest struct {
	Code               string                  `json:"code"`
	Name               string                  `json:"name" binding:"required"`
	Type               zone.ZoneType `json:"type" binding:"required"`
	Address            *string                 `json:"address"`
	IsActive           bool                    `json:"isActive"`
	IsDefault          bool                    `json:"isDefault"`
	CompanyID     string                  `json:"companyId"`
	Description        *string                 `json:"description"`
	ParentID           *string                 `json:"parentId"`
	IsFolder           bool                    `json:"isFolder"`
	Attributes         entity.Attributes       `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateZoneRequest) ToEntity() *zone.Zone {
	wh := zone.NewZone(r.Code, r.Name, r.Type)
	wh.Address = r.Address
	wh.IsActive = r.IsActive
	wh.IsDefault = r.IsDefault
	wh.CompanyID = r.CompanyID
	wh.Description = r.Description
	wh.ParentID = r.ParentID
	wh.IsFolder = r.IsFolder
	wh.Attributes = r.Attributes
	return wh
}

// UpdateZoneRequest is the request body for updating a zone.
type UpdateZoneRequest struct {
	Code               string                  `json:"code"`
	Name               string                  `json:"name" binding:"required"`
	Type               zone.ZoneType `json:"type" binding:"required"`
	Address            *string                 `json:"address,omitempty"`
	IsActive           bool                    `json:"isActive"`
	IsDefault          bool                    `json:"isDefault"`
	CompanyID     string                  `json:"companyId"`
	Description        *string                 `json:"description,omitempty"`
	ParentID           *string                 `json:"parentId,omitempty"`
	IsFolder           bool                    `json:"isFolder"`
	Attributes         entity.Attributes       `json:"attributes"`
	Version            int                     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateZoneRequest) ApplyTo(wh *zone.Zone) {
	wh.Code = r.Code
	wh.Name = r.Name
	wh.Type = r.Type
	wh.Address = r.Address
	wh.IsActive = r.IsActive
	wh.IsDefault = r.IsDefault
	wh.CompanyID = r.CompanyID
	wh.Description = r.Description
	wh.ParentID = r.ParentID
	wh.IsFolder = r.IsFolder
	wh.Attributes = r.Attributes
	wh.Version = r.Version
}

// --- Response DTOs ---

// ZoneResponse is the response body for a zone.
type ZoneResponse struct {
	ID                 string                  `json:"id"`
	Code               string                  `json:"code"`
	Name               string                  `json:"name"`
	Type               zone.ZoneType `json:"type"`
	Address            *string                 `json:"address,omitempty"`
	IsActive           bool                    `json:"isActive"`
	IsDefault          bool                    `json:"isDefault"`
	CompanyID     string                  `json:"companyId,omitempty"`
	Description        *string                 `json:"description,omitempty"`
	ParentID           *string                 `json:"parentId,omitempty"`
	IsFolder           bool                    `json:"isFolder"`
	DeletionMark       bool                    `json:"deletionMark"`
	Version            int                     `json:"version"`
	Attributes         entity.Attributes       `json:"attributes,omitempty"`
}

// FromZone creates response DTO from domain entity.
func FromZone(wh *zone.Zone) *ZoneResponse {
	return &ZoneResponse{
		ID:                 wh.ID.String(),
		Code:               wh.Code,
		Name:               wh.Name,
		Type:               wh.Type,
		Address:            wh.Address,
		IsActive:           wh.IsActive,
		IsDefault:          wh.IsDefault,
		CompanyID:     wh.CompanyID,
		Description:        wh.Description,
		ParentID:           wh.ParentID,
		IsFolder:           wh.IsFolder,
		DeletionMark:       wh.DeletionMark,
		Version:            wh.Version,
		Attributes:         wh.Attributes,
	}
}
