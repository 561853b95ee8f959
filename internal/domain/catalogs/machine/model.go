// Package machine provides the Machine catalog.
// Machines are production equipment that production runs are scheduled on.
package machine

import (
	"context"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
)

// Machine represents a production machine or work center.
type Machine struct {
	entity.Catalog

	// ZoneID is the default WIP zone this machine feeds
	ZoneID *string `db:"zone_id" json:"zoneId,omitempty"`

	// Manufacturer is the equipment maker
	Manufacturer *string `db:"manufacturer" json:"manufacturer,omitempty"`

	// SerialNumber identifies the physical unit
	SerialNumber *string `db:"serial_number" json:"serialNumber,omitempty"`

	// NominalRatePerHour is the rated output in finished units per hour
	NominalRatePerHour float64 `db:"nominal_rate_per_hour" json:"nominalRatePerHour"`

	// IsActive indicates the machine may be used in new production runs
	IsActive bool `db:"is_active" json:"isActive"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewMachine creates a new Machine with required fields.
func NewMachine(code, name string) *Machine {
	return &Machine{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (m *Machine) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if m.NominalRatePerHour < 0 {
		return apperror.NewValidation("nominal rate must not be negative").
			WithDetail("field", "nominalRatePerHour")
	}

	return nil
}

// CanSchedule reports whether new production runs may use this machine.
func (m *Machine) CanSchedule() bool {
	return m.IsActive && !m.IsFolder
}
