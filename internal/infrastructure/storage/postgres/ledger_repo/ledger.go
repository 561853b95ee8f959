// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository. In Database-per-Tenant architecture, TxManager is
// obtained from context.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/ledger"
	"plantops/internal/infrastructure/storage/postgres"
)

const (
	movementsTable = "stock_movements"
	balancesTable  = "stock_balances"
)

var movementColumns = []string{
	"line_id", "company_id", "item_id", "zone_id",
	"direction", "movement_type",
	"quantity", "cost_per_unit", "total_cost",
	"reference_type", "reference_id", "reference_version",
	"notes", "period", "created_at",
}

var balanceColumns = []string{
	"company_id", "item_id", "zone_id",
	"quantity_on_hand", "cost_per_unit", "total_cost",
	"last_movement_at", "updated_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new stock ledger repository.
func NewLedgerRepo() *LedgerRepo {
	return &LedgerRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LedgerRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

func movementValues(m *entity.StockMovement) []any {
	return []any{
		m.LineID, m.CompanyID, m.ItemID, m.ZoneID,
		m.Direction, m.MovementType,
		m.Quantity, m.CostPerUnit, m.TotalCost,
		m.Reference.Type, m.Reference.ID, m.Reference.Version,
		m.Notes, m.Period, m.CreatedAt,
	}
}

// AppendMovement inserts one ledger line. Lines are immutable; there is no
// update or delete path.
func (r *LedgerRepo) AppendMovement(ctx context.Context, m *entity.StockMovement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(movementValues(m)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// AppendMovements batch inserts ledger lines.
func (r *LedgerRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for i := range movements {
			rows = append(rows, movementValues(&movements[i]))
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for i := range movements {
		q = q.Values(movementValues(&movements[i])...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// ListMovements returns movement history matching the filter.
func (r *LedgerRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}
	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.ZoneID != nil {
		q = q.Where(squirrel.Eq{"zone_id": *filter.ZoneID})
	}
	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *filter.Direction})
	}
	if filter.MovementType != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.MovementType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetMovementsByReference retrieves movements referenced to a document.
// version 0 matches every posting cycle.
func (r *LedgerRepo) GetMovementsByReference(ctx context.Context, refType string, refID id.ID, version int) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{
			"reference_type": refType,
			"reference_id":   refID,
		}).
		OrderBy("created_at")

	if version > 0 {
		q = q.Where(squirrel.Eq{"reference_version": version})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements by reference: %w", err)
	}

	return movements, nil
}

// SumMovements aggregates signed quantity and cost for a triple, used for
// ledger/balance consistency checks.
func (r *LedgerRepo) SumMovements(ctx context.Context, companyID, itemID, zoneID id.ID) (types.Quantity, types.Money, error) {
	sql := `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0),
			COALESCE(SUM(CASE WHEN direction = 'in' THEN total_cost ELSE -total_cost END), 0)
		FROM stock_movements
		WHERE company_id = $1 AND item_id = $2 AND zone_id = $3
	`

	var (
		qtyScaled int64
		cost      decimal.Decimal
	)
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, companyID, itemID, zoneID).Scan(&qtyScaled, &cost)
	if err != nil && err != pgx.ErrNoRows {
		return 0, types.Zero(), fmt.Errorf("sum movements: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(qtyScaled), cost, nil
}

// GetIssuedForReference aggregates per-item issued quantity and cost for
// one movement type of a referenced document.
func (r *LedgerRepo) GetIssuedForReference(ctx context.Context, refType string, refID id.ID, movementType entity.MovementType) ([]ledger.IssuedLine, error) {
	sql := `
		SELECT
			item_id,
			zone_id,
			SUM(quantity) AS quantity,
			SUM(total_cost) AS total_cost,
			CASE WHEN SUM(quantity) = 0 THEN 0
			     ELSE SUM(total_cost) / (SUM(quantity)::numeric / 10000)
			END AS cost_per_unit
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2 AND movement_type = $3
		GROUP BY item_id, zone_id
		ORDER BY item_id
	`

	var lines []ledger.IssuedLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, refType, refID, movementType); err != nil {
		return nil, fmt.Errorf("select issued lines: %w", err)
	}

	return lines, nil
}

// GetBalance returns the current balance for a triple.
// A missing row is the known-empty state, not an error.
func (r *LedgerRepo) GetBalance(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	q := r.builder.Select(balanceColumns...).From(balancesTable).
		Where(squirrel.Eq{
			"company_id": companyID,
			"item_id":    itemID,
			"zone_id":    zoneID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.EmptyBalance(companyID, itemID, zoneID), nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance with a row lock. The lock is the
// serialization point for concurrent writers against the same triple. A
// missing row is materialized first: SELECT ... FOR UPDATE locks nothing
// when there is no row yet, so two first movements on the same triple would
// otherwise both read the empty balance and the later upsert would clobber
// the earlier one.
func (r *LedgerRepo) GetBalanceForUpdate(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	return getBalanceForUpdate(ctx, querier, companyID, itemID, zoneID)
}

func getBalanceForUpdate(ctx context.Context, querier postgres.Querier, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	seed := `
		INSERT INTO stock_balances (company_id, item_id, zone_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, item_id, zone_id) DO NOTHING
	`
	if _, err := querier.Exec(ctx, seed, companyID, itemID, zoneID); err != nil {
		return balance, fmt.Errorf("seed balance row: %w", err)
	}

	sql := `
		SELECT company_id, item_id, zone_id,
		       quantity_on_hand, cost_per_unit, total_cost,
		       last_movement_at, updated_at
		FROM stock_balances
		WHERE company_id = $1 AND item_id = $2 AND zone_id = $3
		FOR UPDATE
	`
	if err := pgxscan.Get(ctx, querier, &balance, sql, companyID, itemID, zoneID); err != nil {
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// UpsertBalance writes the new balance state for a triple.
func (r *LedgerRepo) UpsertBalance(ctx context.Context, balance *entity.StockBalance) error {
	sql := `
		INSERT INTO stock_balances (
			company_id, item_id, zone_id,
			quantity_on_hand, cost_per_unit, total_cost,
			last_movement_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id, item_id, zone_id) DO UPDATE SET
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			cost_per_unit    = EXCLUDED.cost_per_unit,
			total_cost       = EXCLUDED.total_cost,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at       = EXCLUDED.updated_at
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		balance.CompanyID, balance.ItemID, balance.ZoneID,
		balance.QuantityOnHand, balance.CostPerUnit, balance.TotalCost,
		balance.LastMovementAt, balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}

	return nil
}

// ListBalances returns balances for reporting.
func (r *LedgerRepo) ListBalances(ctx context.Context, filter ledger.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).From(balancesTable)

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}
	if filter.ZoneID != nil {
		q = q.Where(squirrel.Eq{"zone_id": *filter.ZoneID})
	}
	if len(filter.ItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemIDs})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity_on_hand": int64(0)})
	}

	q = q.OrderBy("zone_id", "item_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
