package bom

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/domain"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/core/numerator"
)

// ItemLookup resolves items for line validation.
type ItemLookup interface {
	GetByID(ctx context.Context, id id.ID) (*item.Item, error)
}

// Service provides business logic for the BOM catalog.
type Service struct {
	*domain.CatalogService[*BOM]
	repo      Repository
	items     ItemLookup
	numerator numerator.Generator
}

// NewService creates a new BOM service.
func NewService(
	repo Repository,
	items ItemLookup,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*BOM]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "bom",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		items:          items,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, b *BOM) error {
	if b.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("BM"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		b.Code = code
	}

	// Assign next version when the caller did not pick one.
	if b.BOMVersion == 0 {
		versions, err := s.repo.ListVersions(ctx, b.FinishedItemID)
		if err != nil {
			return fmt.Errorf("list versions: %w", err)
		}
		next := 1
		for _, v := range versions {
			if v.BOMVersion >= next {
				next = v.BOMVersion + 1
			}
		}
		b.BOMVersion = next
	}

	return s.validateLines(ctx, b)
}

// ResolveActive returns the active BOM version for a finished item with
// lines validated against the item catalog.
func (s *Service) ResolveActive(ctx context.Context, finishedItemID string) (*BOM, error) {
	b, err := s.repo.GetActiveForItem(ctx, finishedItemID)
	if err != nil {
		return nil, err
	}

	if err := s.validateLines(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// ListVersions returns every BOM version for a finished item.
func (s *Service) ListVersions(ctx context.Context, finishedItemID string) ([]*BOM, error) {
	return s.repo.ListVersions(ctx, finishedItemID)
}

// validateLines checks that every line references an existing RAW item.
func (s *Service) validateLines(ctx context.Context, b *BOM) error {
	for _, line := range b.Lines {
		rawID, err := id.Parse(line.RawItemID)
		if err != nil {
			return apperror.NewValidation("invalid raw item id").
				WithDetail("rawItemId", line.RawItemID)
		}

		it, err := s.items.GetByID(ctx, rawID)
		if err != nil {
			return err
		}

		if !it.IsRaw() {
			return apperror.NewValidation("bom line must reference a raw item").
				WithDetail("rawItemId", line.RawItemID).
				WithDetail("type", string(it.Type))
		}
	}
	return nil
}
