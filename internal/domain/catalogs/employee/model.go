// Package employee provides the Employee catalog.
// Employees are crew members assigned to production runs.
package employee

import (
	"context"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/types"
)

// Role defines the job an employee performs on a production crew.
type Role string

const (
	RoleOperator   Role = "operator"
	RoleSetup      Role = "setup"
	RoleSupervisor Role = "supervisor"
	RoleHelper     Role = "helper"
)

// Employee represents a shop-floor worker.
type Employee struct {
	entity.Catalog

	// DefaultRole is the role the employee usually performs
	DefaultRole Role `db:"default_role" json:"defaultRole"`

	// HourlyRate is the labor cost rate, if tracked
	HourlyRate *types.Money `db:"hourly_rate" json:"hourlyRate,omitempty"`

	// HiredAt is the employment start date in ISO format
	HiredAt *string `db:"hired_at" json:"hiredAt,omitempty"`

	// IsActive indicates the employee may be assigned to new crews
	IsActive bool `db:"is_active" json:"isActive"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewEmployee creates a new Employee with required fields.
func NewEmployee(code, name string, role Role) *Employee {
	return &Employee{
		Catalog:     entity.NewCatalog(code, name),
		DefaultRole: role,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable interface.
func (e *Employee) Validate(ctx context.Context) error {
	if err := e.Catalog.Validate(ctx); err != nil {
		return err
	}

	if e.DefaultRole != "" && !isValidRole(e.DefaultRole) {
		return apperror.NewValidation("invalid employee role").
			WithDetail("field", "defaultRole").
			WithDetail("value", string(e.DefaultRole))
	}

	if e.HourlyRate != nil && e.HourlyRate.IsNegative() {
		return apperror.NewValidation("hourly rate must not be negative").
			WithDetail("field", "hourlyRate")
	}

	return nil
}

// CanAssign reports whether the employee may join a new production crew.
func (e *Employee) CanAssign() bool {
	return e.IsActive && !e.IsFolder
}

func isValidRole(r Role) bool {
	switch r {
	case RoleOperator, RoleSetup, RoleSupervisor, RoleHelper:
		return true
	}
	return false
}
