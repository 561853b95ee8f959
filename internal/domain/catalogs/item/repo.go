package item

import (
	"context"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindByArticle retrieves item by article.
	FindByArticle(ctx context.Context, article string) (*Item, error)

	// FindByBarcode retrieves item by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Item, error)

	// GetForUpdate retrieves item with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Item, error)

	// FindLowStock retrieves items with stock below minimum.
	FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)

	// SetLastPurchasePrice updates only the last purchase price column.
	SetLastPurchasePrice(ctx context.Context, id id.ID, price types.Money) error
}
