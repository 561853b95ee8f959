package employee

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/domain"
	"plantops/internal/core/numerator"
)

// Service provides business logic for Employee catalog.
type Service struct {
	*domain.CatalogService[*Employee]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Employee service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Employee]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "employee",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, e *Employee) error {
	if e.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("EM"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		e.Code = code
	}
	return nil
}
