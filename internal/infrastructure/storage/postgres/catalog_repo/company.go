package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/core/apperror"
	"plantops/internal/domain"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/infrastructure/storage/postgres"
)

const companyTable = "cat_companies"

// CompanyRepo implements company.Repository.
type CompanyRepo struct {
	*BaseCatalogRepo[*company.Company]
}

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo() *CompanyRepo {
	return &CompanyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*company.Company](
			companyTable,
			postgres.ExtractDBColumns[company.Company](),
			func() *company.Company { return &company.Company{} },
		),
	}
}

// GetDefault retrieves the default company.
func (r *CompanyRepo) GetDefault(ctx context.Context) (*company.Company, error) {
	org := &company.Company{}

	q := r.Builder().
		Select(r.selectCols...).
		From(companyTable).
		Where(squirrel.Eq{"is_default": true, "deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, org, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(companyTable, "default")
		}
		return nil, fmt.Errorf("get default company: %w", err)
	}

	return org, nil
}

// List implements company.Repository.
func (r *CompanyRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*company.Company], error) {
	return r.BaseCatalogRepo.List(ctx, filter)
}
