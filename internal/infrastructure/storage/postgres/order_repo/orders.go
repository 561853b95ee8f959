// Package order_repo provides the PostgreSQL implementation of the
// sales-order surface that production needs: order lines and raw-material
// reservations. In Database-per-Tenant architecture, TxManager is obtained
// from context.
package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/orders"
	"plantops/internal/infrastructure/storage/postgres"
)

const (
	orderLinesTable   = "sales_order_lines"
	reservationsTable = "raw_reservations"
)

var orderLineColumns = []string{
	"line_id", "order_number", "company_id", "item_id",
	"quantity", "produced_qty", "scrap_qty",
	"expected_raw_cost", "actual_raw_cost",
	"due_date", "created_at", "updated_at",
}

// OrderRepo implements orders.LineStore and orders.ReservationReleaser.
type OrderRepo struct {
	builder squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *OrderRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// GetLine retrieves an order line by ID.
func (r *OrderRepo) GetLine(ctx context.Context, lineID id.ID) (*orders.SalesOrderLine, error) {
	return r.getLine(ctx, lineID, false)
}

// GetLineForUpdate retrieves an order line with a row lock.
func (r *OrderRepo) GetLineForUpdate(ctx context.Context, lineID id.ID) (*orders.SalesOrderLine, error) {
	return r.getLine(ctx, lineID, true)
}

func (r *OrderRepo) getLine(ctx context.Context, lineID id.ID, forUpdate bool) (*orders.SalesOrderLine, error) {
	q := r.builder.Select(orderLineColumns...).
		From(orderLinesTable).
		Where(squirrel.Eq{"line_id": lineID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	line := &orders.SalesOrderLine{}
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, line, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sales order line", lineID.String())
		}
		return nil, fmt.Errorf("get order line: %w", err)
	}

	return line, nil
}

// IncrementProduced adds good and scrap deltas to the line's totals.
func (r *OrderRepo) IncrementProduced(ctx context.Context, lineID id.ID, goodDelta, scrapDelta types.Quantity) error {
	sql := `
		UPDATE sales_order_lines
		SET produced_qty = produced_qty + $2,
		    scrap_qty    = scrap_qty + $3,
		    updated_at   = NOW()
		WHERE line_id = $1
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, lineID, goodDelta, scrapDelta)
	if err != nil {
		return fmt.Errorf("increment produced: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sales order line", lineID.String())
	}

	return nil
}

// ApplyRawCost adds expected and actual raw material cost to the line.
func (r *OrderRepo) ApplyRawCost(ctx context.Context, lineID id.ID, expected, actual types.Money) error {
	sql := `
		UPDATE sales_order_lines
		SET expected_raw_cost = expected_raw_cost + $2,
		    actual_raw_cost   = actual_raw_cost + $3,
		    updated_at        = NOW()
		WHERE line_id = $1
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, lineID, expected, actual)
	if err != nil {
		return fmt.Errorf("apply raw cost: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sales order line", lineID.String())
	}

	return nil
}

// ReleaseRawReservation shrinks the standing hold for (lineID, itemID) by
// up to quantity, deleting rows the release exhausts. Over-releasing is
// not an error; the hold simply reaches zero.
func (r *OrderRepo) ReleaseRawReservation(ctx context.Context, lineID id.ID, itemID string, quantity types.Quantity) error {
	if quantity <= 0 {
		return nil
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	// Oldest reservations release first.
	selectSQL := `
		SELECT reservation_id, quantity
		FROM raw_reservations
		WHERE line_id = $1 AND item_id = $2
		ORDER BY created_at
		FOR UPDATE
	`
	rows, err := querier.Query(ctx, selectSQL, lineID, itemID)
	if err != nil {
		return fmt.Errorf("select reservations: %w", err)
	}
	defer rows.Close()

	type hold struct {
		reservationID id.ID
		quantity      types.Quantity
	}
	var holds []hold
	for rows.Next() {
		var h hold
		if err := rows.Scan(&h.reservationID, &h.quantity); err != nil {
			return fmt.Errorf("scan reservation: %w", err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate reservations: %w", err)
	}

	remaining := quantity
	for _, h := range holds {
		if remaining <= 0 {
			break
		}

		if h.quantity <= remaining {
			deleteSQL := "DELETE FROM raw_reservations WHERE reservation_id = $1"
			if _, err := querier.Exec(ctx, deleteSQL, h.reservationID); err != nil {
				return fmt.Errorf("delete reservation: %w", err)
			}
			remaining -= h.quantity
			continue
		}

		updateSQL := "UPDATE raw_reservations SET quantity = quantity - $2 WHERE reservation_id = $1"
		if _, err := querier.Exec(ctx, updateSQL, h.reservationID, remaining); err != nil {
			return fmt.Errorf("shrink reservation: %w", err)
		}
		remaining = 0
	}

	return nil
}

// CreateLine inserts a sales-order line, used by seeding and tests.
func (r *OrderRepo) CreateLine(ctx context.Context, line *orders.SalesOrderLine) error {
	q := r.builder.Insert(orderLinesTable).
		Columns(orderLineColumns...).
		Values(
			line.LineID, line.OrderNumber, line.CompanyID, line.ItemID,
			line.Quantity, line.ProducedQty, line.ScrapQty,
			line.ExpectedRawCost, line.ActualRawCost,
			line.DueDate, line.CreatedAt, line.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}

	return nil
}

// CreateReservation inserts a raw-material hold for an order line.
func (r *OrderRepo) CreateReservation(ctx context.Context, res *orders.RawReservation) error {
	if id.IsNil(res.ReservationID) {
		res.ReservationID = id.New()
	}

	q := r.builder.Insert(reservationsTable).
		Columns("reservation_id", "line_id", "item_id", "zone_id", "quantity", "created_at").
		Values(res.ReservationID, res.LineID, res.ItemID, res.ZoneID, res.Quantity, res.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var (
	_ orders.LineStore           = (*OrderRepo)(nil)
	_ orders.ReservationReleaser = (*OrderRepo)(nil)
)
