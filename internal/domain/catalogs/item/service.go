package item

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/core/numerator"
	"plantops/internal/domain"
)

// Service provides business logic for Item catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Item]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Item service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "item",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, item *Item) error {
	// Generate code if not provided
	if item.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("NM"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		item.Code = code
	}

	// Check article uniqueness
	if item.Article != nil && *item.Article != "" {
		if exists, _ := s.checkArticleExists(ctx, *item.Article, item.ID); exists {
			return apperror.NewConflict("item with this article already exists").
				WithDetail("article", item.Article)
		}
	}

	// Check barcode uniqueness
	if item.Barcode != nil && *item.Barcode != "" {
		if exists, _ := s.checkBarcodeExists(ctx, *item.Barcode, item.ID); exists {
			return apperror.NewConflict("item with this barcode already exists").
				WithDetail("barcode", item.Barcode)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, item *Item) error {
	if item.Article != nil && *item.Article != "" {
		if exists, _ := s.checkArticleExists(ctx, *item.Article, item.ID); exists {
			return apperror.NewConflict("item with this article already exists").
				WithDetail("article", item.Article)
		}
	}

	if item.Barcode != nil && *item.Barcode != "" {
		if exists, _ := s.checkBarcodeExists(ctx, *item.Barcode, item.ID); exists {
			return apperror.NewConflict("item with this barcode already exists").
				WithDetail("barcode", item.Barcode)
		}
	}

	return nil
}

// --- Entity-specific methods ---

// FindLowStock retrieves items with stock below minimum.
func (s *Service) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.FindLowStock(ctx, filter)
}

// FindByArticle retrieves item by article.
func (s *Service) FindByArticle(ctx context.Context, article string) (*Item, error) {
	return s.repo.FindByArticle(ctx, article)
}

// FindByBarcode retrieves item by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Item, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// checkArticleExists checks if article is already used.
// UpdateLastPurchasePrice records the latest purchase price on an item.
// Called when a goods receipt is posted.
func (s *Service) UpdateLastPurchasePrice(ctx context.Context, itemID id.ID, price types.Money) error {
	if price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("itemId", itemID.String())
	}
	return s.repo.SetLastPurchasePrice(ctx, itemID, price)
}

func (s *Service) checkArticleExists(ctx context.Context, article string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByArticle(ctx, article)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}

// checkBarcodeExists checks if barcode is already used.
func (s *Service) checkBarcodeExists(ctx context.Context, barcode string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}
