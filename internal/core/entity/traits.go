package entity

import (
	"context"
	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
)

// ZoneAware is a trait for documents that target a single stock zone.
// Used for composition in models like GoodsReceipt and Delivery.
type ZoneAware struct {
	// ZoneID is the zone the document's lines move stock in or out of
	ZoneID id.ID `db:"zone_id" json:"zoneId"`
}

// ValidateZone ensures a zone is set.
func (z *ZoneAware) ValidateZone(ctx context.Context) error {
	if id.IsNil(z.ZoneID) {
		return apperror.NewValidation("zone is required").
			WithDetail("field", "zoneId")
	}
	return nil
}

// GetZoneID returns the zone ID (useful for interfaces).
func (z *ZoneAware) GetZoneID() id.ID {
	return z.ZoneID
}

// IZoneAware is an interface for any document that has a stock zone.
type IZoneAware interface {
	GetZoneID() id.ID
	ValidateZone(ctx context.Context) error
}
