package company

import (
	"context"
	"plantops/internal/domain"
)

// Repository defines the interface for company storage.
type Repository interface {
	domain.CatalogRepository[*Company]

	GetDefault(ctx context.Context) (*Company, error)
}
