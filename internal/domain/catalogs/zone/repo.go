package zone

import (
	"context"

	"plantops/internal/core/id"
	"plantops/internal/domain"
)

// Repository defines the interface for Zone persistence.
type Repository interface {
	domain.CatalogRepository[*Zone]

	// GetForUpdate retrieves zone with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Zone, error)

	// ClearDefault clears the default flag on all zones (before setting new default).
	ClearDefault(ctx context.Context) error
}
