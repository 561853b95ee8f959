package company

import (
	"context"

	"plantops/internal/core/numerator"
	"plantops/internal/domain"
)

// Service provides business logic for Company catalog.
type Service struct {
	*domain.CatalogService[*Company]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Company service.
func NewService(repo Repository, numerator numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		Numerator:  numerator,
		EntityName: "company",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	return svc
}

// GetDefault retrieves the default company.
func (s *Service) GetDefault(ctx context.Context) (*Company, error) {
	return s.repo.GetDefault(ctx)
}
