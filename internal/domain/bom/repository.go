package bom

import (
	"context"

	"plantops/internal/domain"
)

// Repository defines the interface for BOM persistence.
type Repository interface {
	domain.CatalogRepository[*BOM]

	// GetActiveForItem returns the highest active version for a finished
	// item, with lines loaded. NotFound if no active version exists.
	GetActiveForItem(ctx context.Context, finishedItemID string) (*BOM, error)

	// ListVersions returns every version for a finished item, newest first,
	// without lines.
	ListVersions(ctx context.Context, finishedItemID string) ([]*BOM, error)
}
