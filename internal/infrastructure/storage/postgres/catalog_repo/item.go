package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo() *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			itemTable,
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// FindLowStock retrieves items with stock below minimum.
func (r *ItemRepo) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	result := domain.ListResult[*item.Item]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, _ := q.ToSql()

	var items []*item.Item
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return result, fmt.Errorf("find low stock: %w", err)
	}
	result.Items = items

	return result, nil
}

// FindByArticle retrieves item by article.
func (r *ItemRepo) FindByArticle(ctx context.Context, article string) (*item.Item, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"article": article}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("item", article)
		}
		return nil, err
	}
	return item, nil
}

// FindByBarcode retrieves item by barcode.
func (r *ItemRepo) FindByBarcode(ctx context.Context, barcode string) (*item.Item, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("item", barcode)
		}
		return nil, err
	}
	return item, nil
}

// SetLastPurchasePrice updates only the price column, bypassing optimistic
// locking so posting a receipt never conflicts with catalog edits.
func (r *ItemRepo) SetLastPurchasePrice(ctx context.Context, itemID id.ID, price types.Money) error {
	q := r.Builder().
		Update(itemTable).
		Set("last_purchase_price", price).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set last purchase price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}

	return nil
}
