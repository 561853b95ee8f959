package reports

import (
	"context"
	"fmt"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOnHand generates the on-hand valuation report.
func (s *Service) GetOnHand(ctx context.Context, filter OnHandFilter) (*OnHandReport, error) {
	if id.IsNil(filter.CompanyID) {
		return nil, apperror.NewValidation("companyId is required")
	}

	clampPagination(&filter.Limit, 100, 1000)

	report, err := s.repo.GetOnHandReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get on-hand report: %w", err)
	}

	return report, nil
}

// GetTurnover generates the stock turnover report for a period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (*TurnoverReport, error) {
	if id.IsNil(filter.CompanyID) {
		return nil, apperror.NewValidation("companyId is required")
	}
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	clampPagination(&filter.Limit, 100, 1000)

	report, err := s.repo.GetTurnoverReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get turnover report: %w", err)
	}

	return report, nil
}

// GetProductionVariance generates the production variance report over
// closed runs.
func (s *Service) GetProductionVariance(ctx context.Context, filter ProductionVarianceFilter) (*ProductionVarianceReport, error) {
	if id.IsNil(filter.CompanyID) {
		return nil, apperror.NewValidation("companyId is required")
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	clampPagination(&filter.Limit, 50, 500)

	report, err := s.repo.GetProductionVarianceReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get production variance report: %w", err)
	}

	return report, nil
}

func clampPagination(limit *int, def, max int) {
	if *limit <= 0 {
		*limit = def
	}
	if *limit > max {
		*limit = max
	}
}
