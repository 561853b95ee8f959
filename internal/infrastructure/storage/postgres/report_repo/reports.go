// Package report_repo provides the PostgreSQL implementation of report
// queries. Reports are read-only aggregates over the stock ledger and the
// production log tables; they never mutate state. In Database-per-Tenant
// architecture, TxManager is obtained from context.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/domain/reports"
	"plantops/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// GetOnHandReport reads current balances with item and zone names joined
// in. Value figures come straight from stock_balances, so the report
// always agrees with what the recorder maintains.
func (r *ReportRepo) GetOnHandReport(ctx context.Context, filter reports.OnHandFilter) (*reports.OnHandReport, error) {
	q := r.builder.Select(
		"b.item_id", "i.code AS item_code", "i.name AS item_name",
		"b.zone_id", "z.code AS zone_code", "z.name AS zone_name",
		"b.quantity_on_hand", "b.cost_per_unit", "b.total_cost",
	).
		From("stock_balances b").
		Join("cat_items i ON i.id = b.item_id").
		Join("cat_zones z ON z.id = b.zone_id").
		Where(squirrel.Eq{"b.company_id": filter.CompanyID}).
		OrderBy("i.code", "z.code")

	if len(filter.ZoneIDs) > 0 {
		q = q.Where(squirrel.Eq{"b.zone_id": filter.ZoneIDs})
	}
	if len(filter.ItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"b.item_id": filter.ItemIDs})
	}
	if filter.ExcludeZero {
		q = q.Where("b.quantity_on_hand <> 0")
	}

	q = q.Limit(uint64(filter.Limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []reports.OnHandItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select on-hand rows: %w", err)
	}

	report := &reports.OnHandReport{
		GeneratedAt: time.Now().UTC(),
		Items:       items,
		TotalItems:  len(items),
	}
	for _, it := range items {
		report.TotalQuantity += it.Quantity
		report.TotalValue = report.TotalValue.Add(it.Value)
	}

	return report, nil
}

// GetTurnoverReport computes opening, inflow, outflow and closing per
// (item, zone) for a period from the movement ledger. Opening is the
// signed sum of all movements before the period start, so the report can
// be rebuilt for any historical window.
func (r *ReportRepo) GetTurnoverReport(ctx context.Context, filter reports.TurnoverFilter) (*reports.TurnoverReport, error) {
	sql := `
		WITH signed AS (
			SELECT
				m.item_id,
				m.zone_id,
				m.period,
				CASE WHEN m.direction = 'in' THEN m.quantity ELSE -m.quantity END AS qty,
				CASE WHEN m.direction = 'in' THEN m.total_cost ELSE -m.total_cost END AS cost
			FROM stock_movements m
			WHERE m.company_id = $1
			  AND m.period < $3
			  AND ($4::uuid[] IS NULL OR cardinality($4::uuid[]) = 0 OR m.zone_id = ANY($4))
			  AND ($5::uuid[] IS NULL OR cardinality($5::uuid[]) = 0 OR m.item_id = ANY($5))
		)
		SELECT
			s.item_id,
			i.code AS item_code,
			i.name AS item_name,
			s.zone_id,
			z.name AS zone_name,
			COALESCE(SUM(qty)  FILTER (WHERE s.period < $2), 0)               AS opening_qty,
			COALESCE(SUM(cost) FILTER (WHERE s.period < $2), 0)               AS opening_cost,
			COALESCE(SUM(qty)  FILTER (WHERE s.period >= $2 AND qty > 0), 0)  AS inflow_qty,
			COALESCE(SUM(cost) FILTER (WHERE s.period >= $2 AND qty > 0), 0)  AS inflow_cost,
			COALESCE(-SUM(qty)  FILTER (WHERE s.period >= $2 AND qty < 0), 0) AS outflow_qty,
			COALESCE(-SUM(cost) FILTER (WHERE s.period >= $2 AND qty < 0), 0) AS outflow_cost,
			COALESCE(SUM(qty), 0)                                             AS closing_qty,
			COALESCE(SUM(cost), 0)                                            AS closing_cost
		FROM signed s
		JOIN cat_items i ON i.id = s.item_id
		JOIN cat_zones z ON z.id = s.zone_id
		GROUP BY s.item_id, i.code, i.name, s.zone_id, z.name
		ORDER BY i.code, z.name
		LIMIT $6 OFFSET $7
	`

	var items []reports.TurnoverItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql,
		filter.CompanyID, filter.FromDate, filter.ToDate,
		filter.ZoneIDs, filter.ItemIDs,
		filter.Limit, filter.Offset,
	); err != nil {
		return nil, fmt.Errorf("select turnover rows: %w", err)
	}

	report := &reports.TurnoverReport{
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		Items:      items,
		TotalItems: len(items),
	}
	for _, it := range items {
		report.TotalInflowCost = report.TotalInflowCost.Add(it.InflowCost)
		report.TotalOutflowCost = report.TotalOutflowCost.Add(it.OutflowCost)
	}

	return report, nil
}

// GetProductionVarianceReport lists closed production runs with their
// material variance and OEE figures.
func (r *ReportRepo) GetProductionVarianceReport(ctx context.Context, filter reports.ProductionVarianceFilter) (*reports.ProductionVarianceReport, error) {
	q := r.builder.Select(
		"p.id", "p.number", "p.finished_item_id", "i.name AS item_name",
		"p.machine_id", "p.start_at", "p.close_at",
		"p.planned_qty", "p.good_qty", "p.reject_qty", "p.scrap_qty", "p.oee_pct",
		"p.expected_raw_cost", "p.actual_raw_cost",
		"p.material_variance_cost", "p.material_variance_pct",
	).
		From("doc_production_logs p").
		Join("cat_items i ON i.id::text = p.finished_item_id").
		Where(squirrel.Eq{"p.company_id": filter.CompanyID.String()}).
		Where(squirrel.Eq{"p.status": "CLOSED"}).
		OrderBy("p.close_at DESC")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"p.close_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"p.close_at": *filter.ToDate})
	}
	if len(filter.FinishedItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"p.finished_item_id": filter.FinishedItemIDs})
	}
	if len(filter.MachineIDs) > 0 {
		q = q.Where(squirrel.Eq{"p.machine_id": filter.MachineIDs})
	}

	q = q.Limit(uint64(filter.Limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []reports.ProductionVarianceItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select variance rows: %w", err)
	}

	report := &reports.ProductionVarianceReport{
		Items:      items,
		TotalItems: len(items),
	}
	var oeeSum float64
	for _, it := range items {
		report.TotalExpectedCost = report.TotalExpectedCost.Add(it.ExpectedRawCost)
		report.TotalActualCost = report.TotalActualCost.Add(it.ActualRawCost)
		report.TotalVarianceCost = report.TotalVarianceCost.Add(it.MaterialVarianceCost)
		oeeSum += it.OEEPct
	}
	if len(items) > 0 {
		report.AverageOEEPct = oeeSum / float64(len(items))
	}

	return report, nil
}

var _ reports.Repository = (*ReportRepo)(nil)
