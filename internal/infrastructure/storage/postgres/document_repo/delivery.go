package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/core/id"
	"plantops/internal/domain"
	"plantops/internal/domain/documents/delivery"
	"plantops/internal/infrastructure/storage/postgres"
)

const (
	deliveriesTable    = "doc_deliveries"
	deliveryLinesTable = "doc_delivery_lines"
)

// DeliveryRepo implements delivery.Repository.
type DeliveryRepo struct {
	*BaseDocumentRepo[*delivery.Delivery]
}

// NewDeliveryRepo creates a new delivery repository.
func NewDeliveryRepo() *DeliveryRepo {
	return &DeliveryRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			deliveriesTable,
			postgres.ExtractDBColumns[delivery.Delivery](),
			func() *delivery.Delivery { return &delivery.Delivery{} },
		),
	}
}

func (r *DeliveryRepo) GetLines(ctx context.Context, docID id.ID) ([]delivery.DeliveryLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_id",
			"quantity", "sale_price", "amount",
		).
		From(deliveryLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []delivery.DeliveryLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *DeliveryRepo) SaveLines(ctx context.Context, docID id.ID, lines []delivery.DeliveryLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + deliveryLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(deliveryLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id",
			"quantity", "sale_price", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID,
			line.Quantity, line.SalePrice, line.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *DeliveryRepo) List(ctx context.Context, filter delivery.ListFilter) (domain.ListResult[*delivery.Delivery], error) {
	result := domain.ListResult[*delivery.Delivery]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.CustomerName != nil {
		q = q.Where(squirrel.ILike{"customer_name": "%" + *filter.CustomerName + "%"})
	}

	if filter.ZoneID != nil {
		q = q.Where(squirrel.Eq{"zone_id": *filter.ZoneID})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"customer_order_number": searchPattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
