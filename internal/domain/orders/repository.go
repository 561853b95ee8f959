package orders

import (
	"context"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

// LineStore persists sales-order lines as production progresses.
type LineStore interface {
	// GetLine retrieves an order line by ID.
	GetLine(ctx context.Context, lineID id.ID) (*SalesOrderLine, error)

	// GetLineForUpdate retrieves an order line with a row lock.
	GetLineForUpdate(ctx context.Context, lineID id.ID) (*SalesOrderLine, error)

	// IncrementProduced adds good and scrap deltas to the line's totals.
	IncrementProduced(ctx context.Context, lineID id.ID, goodDelta, scrapDelta types.Quantity) error

	// ApplyRawCost adds expected and actual raw material cost to the
	// line's running totals.
	ApplyRawCost(ctx context.Context, lineID id.ID, expected, actual types.Money) error
}

// ReservationReleaser frees standing raw-material holds.
// Production start calls it before issuing raw stock for an order line.
type ReservationReleaser interface {
	// ReleaseRawReservation releases up to quantity of the hold for
	// (lineID, itemID). Releasing more than is held is not an error;
	// the hold is simply exhausted.
	ReleaseRawReservation(ctx context.Context, lineID id.ID, itemID string, quantity types.Quantity) error
}
