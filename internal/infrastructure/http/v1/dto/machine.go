package dto

import (
	"plantops/internal/domain/catalogs/machine"
)

// --- Request DTOs ---

// CreateMachineRequest is the request body for creating a machine.
type CreateMachineRequest struct {
	Code              string  `json:"code"`
	Name              string  `json:"name" binding:"required"`
	ZoneID            *string `json:"zoneId"`
	Manufacturer      *string `json:"manufacturer"`
	SerialNumber      *string `json:"serialNumber"`
	NominalRatePerHour float64 `json:"nominalRatePerHour"`
	IsActive          bool    `json:"isActive"`
	Description       *string `json:"description"`
	ParentID          *string `json:"parentId"`
	IsFolder          bool    `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMachineRequest) ToEntity() *machine.Machine {
	m := machine.NewMachine(r.Code, r.Name)
	m.ZoneID = r.ZoneID
	m.Manufacturer = r.Manufacturer
	m.SerialNumber = r.SerialNumber
	m.NominalRatePerHour = r.NominalRatePerHour
	m.IsActive = r.IsActive
	m.Description = r.Description
	m.ParentID = r.ParentID
	m.IsFolder = r.IsFolder
	return m
}

// UpdateMachineRequest is the request body for updating a machine.
type UpdateMachineRequest struct {
	Code              string  `json:"code"`
	Name              string  `json:"name" binding:"required"`
	ZoneID            *string `json:"zoneId"`
	Manufacturer      *string `json:"manufacturer"`
	SerialNumber      *string `json:"serialNumber"`
	NominalRatePerHour float64 `json:"nominalRatePerHour"`
	IsActive          bool    `json:"isActive"`
	Description       *string `json:"description"`
	ParentID          *string `json:"parentId"`
	IsFolder          bool    `json:"isFolder"`
	Version           int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMachineRequest) ApplyTo(m *machine.Machine) {
	m.Code = r.Code
	m.Name = r.Name
	m.ZoneID = r.ZoneID
	m.Manufacturer = r.Manufacturer
	m.SerialNumber = r.SerialNumber
	m.NominalRatePerHour = r.NominalRatePerHour
	m.IsActive = r.IsActive
	m.Description = r.Description
	m.ParentID = r.ParentID
	m.IsFolder = r.IsFolder
	m.Version = r.Version
}

// --- Response DTOs ---

// MachineResponse is the response body for a machine.
type MachineResponse struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	ZoneID            *string `json:"zoneId,omitempty"`
	Manufacturer      *string `json:"manufacturer,omitempty"`
	SerialNumber      *string `json:"serialNumber,omitempty"`
	NominalRatePerHour float64 `json:"nominalRatePerHour"`
	IsActive          bool    `json:"isActive"`
	Description       *string `json:"description,omitempty"`
	ParentID          *string `json:"parentId,omitempty"`
	IsFolder          bool    `json:"isFolder"`
	DeletionMark      bool    `json:"deletionMark"`
	Version           int     `json:"version"`
}

// FromMachine creates response DTO from domain entity.
func FromMachine(m *machine.Machine) *MachineResponse {
	return &MachineResponse{
		ID:                m.ID.String(),
		Code:              m.Code,
		Name:              m.Name,
		ZoneID:            m.ZoneID,
		Manufacturer:      m.Manufacturer,
		SerialNumber:      m.SerialNumber,
		NominalRatePerHour: m.NominalRatePerHour,
		IsActive:          m.IsActive,
		Description:       m.Description,
		ParentID:          m.ParentID,
		IsFolder:          m.IsFolder,
		DeletionMark:      m.DeletionMark,
		Version:           m.Version,
	}
}
