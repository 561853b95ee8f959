// Package zone provides the Zone catalog: logical stock locations that the
// ledger keys balances by (raw intake, work-in-progress, finished goods,
// scrap, in-transit).
package zone

import (
	"context"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
)

// ZoneType defines the role of a zone in the stock flow.
type ZoneType string

const (
	TypeRaw      ZoneType = "RAW"
	TypeWIP      ZoneType = "WIP"
	TypeFinished ZoneType = "FINISHED"
	TypeScrap    ZoneType = "SCRAP"
	TypeTransit  ZoneType = "TRANSIT"
)

// Zone represents a stock location.
type Zone struct {
	entity.Catalog

	// Type defines the zone role
	Type ZoneType `db:"type" json:"type"`

	// Address is the physical address, if the zone maps to one
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if zone is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault indicates if this is the default zone of its type
	IsDefault bool `db:"is_default" json:"isDefault"`

	// CompanyID is reference to owning company
	CompanyID string `db:"company_id" json:"companyId,omitempty"`

	// Description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewZone creates a new Zone with required fields.
func NewZone(code, name string, zoneType ZoneType) *Zone {
	return &Zone{
		Catalog:  entity.NewCatalog(code, name),
		Type:     zoneType,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (z *Zone) Validate(ctx context.Context) error {
	if err := z.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidZoneType(z.Type) {
		return apperror.NewValidation("invalid zone type").
			WithDetail("field", "type").
			WithDetail("value", string(z.Type))
	}

	return nil
}

// MaterialClass returns the valuation class for stock held in this zone.
// WIP zones force the WIP class; elsewhere the item type decides.
func (z *Zone) MaterialClass(itemIsRaw bool) entity.MaterialClass {
	if z.Type == TypeWIP {
		return entity.MaterialClassWIP
	}
	if itemIsRaw {
		return entity.MaterialClassRaw
	}
	return entity.MaterialClassFinished
}

// CanHoldStock returns true if movements may target this zone.
func (z *Zone) CanHoldStock() bool {
	return z.IsActive && !z.IsFolder
}

func isValidZoneType(t ZoneType) bool {
	switch t {
	case TypeRaw, TypeWIP, TypeFinished, TypeScrap, TypeTransit:
		return true
	}
	return false
}
