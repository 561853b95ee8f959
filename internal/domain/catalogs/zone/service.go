package zone

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/core/numerator"
	"plantops/internal/domain"
)

// Service provides business logic for Zone catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Zone] // Embedded for delegation
	repo                               Repository
	numerator                          numerator.Generator
}

// NewService creates a new Zone service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Zone]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "zone",
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

// prepareForCreate handles code generation and default flag.
func (s *Service) prepareForCreate(ctx context.Context, wh *Zone) error {
	// Generate code if not provided
	if wh.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("WH"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		wh.Code = code
	}

	// If setting as default, clear other defaults
	if wh.IsDefault {
		if err := s.clearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate handles default flag.
func (s *Service) prepareForUpdate(ctx context.Context, wh *Zone) error {
	if wh.IsDefault {
		if err := s.clearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// --- Entity-specific methods ---

// clearDefault clears the default flag on all zones.
func (s *Service) clearDefault(ctx context.Context) error {
	return s.repo.ClearDefault(ctx)
}
