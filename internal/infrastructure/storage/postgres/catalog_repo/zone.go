package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"plantops/internal/domain/catalogs/zone"
	"plantops/internal/infrastructure/storage/postgres"
)

const zoneTable = "cat_zones"

// ZoneRepo implements zone.Repository.
type ZoneRepo struct {
	*BaseCatalogRepo[*zone.Zone]
}

// NewZoneRepo creates a new zone repository.
func NewZoneRepo() *ZoneRepo {
	return &ZoneRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*zone.Zone](
			zoneTable,
			postgres.ExtractDBColumns[zone.Zone](),
			func() *zone.Zone { return &zone.Zone{} },
		),
	}
}

// ClearDefault clears the default flag on all zones.
func (r *ZoneRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(zoneTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	return nil
}
