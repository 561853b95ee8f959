package dto

import (
	"github.com/shopspring/decimal"

	"plantops/internal/domain/catalogs/employee"
)

// --- Request DTOs ---

// CreateEmployeeRequest is the request body for creating an employee.
type CreateEmployeeRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name" binding:"required"`
	DefaultRole employee.Role    `json:"defaultRole" binding:"required"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate"`
	HiredAt     *string          `json:"hiredAt"`
	IsActive    bool             `json:"isActive"`
	Description *string          `json:"description"`
	ParentID    *string          `json:"parentId"`
	IsFolder    bool             `json:"isFolder"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateEmployeeRequest) ToEntity() *employee.Employee {
	e := employee.NewEmployee(r.Code, r.Name, r.DefaultRole)
	e.HourlyRate = r.HourlyRate
	e.HiredAt = r.HiredAt
	e.IsActive = r.IsActive
	e.Description = r.Description
	e.ParentID = r.ParentID
	e.IsFolder = r.IsFolder
	return e
}

// UpdateEmployeeRequest is the request body for updating an employee.
type UpdateEmployeeRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name" binding:"required"`
	DefaultRole employee.Role    `json:"defaultRole" binding:"required"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate"`
	HiredAt     *string          `json:"hiredAt"`
	IsActive    bool             `json:"isActive"`
	Description *string          `json:"description"`
	ParentID    *string          `json:"parentId"`
	IsFolder    bool             `json:"isFolder"`
	Version     int              `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateEmployeeRequest) ApplyTo(e *employee.Employee) {
	e.Code = r.Code
	e.Name = r.Name
	e.DefaultRole = r.DefaultRole
	e.HourlyRate = r.HourlyRate
	e.HiredAt = r.HiredAt
	e.IsActive = r.IsActive
	e.Description = r.Description
	e.ParentID = r.ParentID
	e.IsFolder = r.IsFolder
	e.Version = r.Version
}

// --- Response DTOs ---

// EmployeeResponse is the response body for an employee.
type EmployeeResponse struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	DefaultRole employee.Role    `json:"defaultRole"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate,omitempty"`
	HiredAt     *string          `json:"hiredAt,omitempty"`
	IsActive    bool             `json:"isActive"`
	Description *string          `json:"description,omitempty"`
	ParentID    *string          `json:"parentId,omitempty"`
	IsFolder    bool             `json:"isFolder"`
	DeletionMark bool            `json:"deletionMark"`
	Version     int              `json:"version"`
}

// FromEmployee creates response DTO from domain entity.
func FromEmployee(e *employee.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:          e.ID.String(),
		Code:        e.Code,
		Name:        e.Name,
		DefaultRole: e.DefaultRole,
		HourlyRate:  e.HourlyRate,
		HiredAt:     e.HiredAt,
		IsActive:    e.IsActive,
		Description: e.Description,
		ParentID:    e.ParentID,
		IsFolder:    e.IsFolder,
		DeletionMark: e.DeletionMark,
		Version:     e.Version,
	}
}
