package machine

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/domain"
	"plantops/internal/core/numerator"
)

// Service provides business logic for Machine catalog.
type Service struct {
	*domain.CatalogService[*Machine]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Machine service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Machine]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "machine",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, m *Machine) error {
	if m.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("MC"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		m.Code = code
	}
	return nil
}
