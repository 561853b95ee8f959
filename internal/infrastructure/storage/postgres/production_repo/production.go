// Package production_repo provides the PostgreSQL implementation of the
// production log repository. In Database-per-Tenant architecture,
// TxManager is obtained from context.
package production_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/domain/production"
	"plantops/internal/infrastructure/storage/postgres"
)

const (
	productionLogsTable = "doc_production_logs"
	productionCrewTable = "doc_production_log_crew"
)

var crewColumns = []string{
	"line_id", "log_id", "employee_id", "role", "start_at", "end_at",
}

// ProductionRepo implements production.Repository.
type ProductionRepo struct {
	builder    squirrel.StatementBuilderType
	selectCols []string
}

// NewProductionRepo creates a new production log repository.
func NewProductionRepo() *ProductionRepo {
	return &ProductionRepo{
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[production.ProductionLog](),
	}
}

func (r *ProductionRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// Create inserts a production log.
func (r *ProductionRepo) Create(ctx context.Context, log *production.ProductionLog) error {
	data := postgres.StructToMap(log)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(productionLogsTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert production log: %w", err)
	}

	return nil
}

// Update persists a production log with optimistic locking.
func (r *ProductionRepo) Update(ctx context.Context, log *production.ProductionLog) error {
	data := postgres.StructToMap(log)

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "created_at", "created_by", "version", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Update(productionLogsTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": log.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update production log: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(productionLogsTable, log.ID)
	}
	log.Version++

	return nil
}

// GetByID retrieves a production log with crew.
func (r *ProductionRepo) GetByID(ctx context.Context, logID id.ID) (*production.ProductionLog, error) {
	return r.get(ctx, logID, false)
}

// GetForUpdate retrieves a production log with a row lock. Concurrent
// closes against the same log serialize on this lock.
func (r *ProductionRepo) GetForUpdate(ctx context.Context, logID id.ID) (*production.ProductionLog, error) {
	return r.get(ctx, logID, true)
}

func (r *ProductionRepo) get(ctx context.Context, logID id.ID, forUpdate bool) (*production.ProductionLog, error) {
	q := r.builder.Select(r.selectCols...).
		From(productionLogsTable).
		Where(squirrel.Eq{"id": logID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	log := &production.ProductionLog{}
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, log, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("production log", logID.String())
		}
		return nil, fmt.Errorf("get production log: %w", err)
	}

	crew, err := r.getCrew(ctx, logID)
	if err != nil {
		return nil, err
	}
	log.Crew = crew

	return log, nil
}

// List retrieves production logs without crew.
func (r *ProductionRepo) List(ctx context.Context, filter production.Filter) ([]*production.ProductionLog, error) {
	q := r.builder.Select(r.selectCols...).From(productionLogsTable)

	if filter.CompanyID != "" {
		q = q.Where(squirrel.Eq{"company_id": filter.CompanyID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Purpose != nil {
		q = q.Where(squirrel.Eq{"purpose": *filter.Purpose})
	}
	if filter.FinishedItemID != nil {
		q = q.Where(squirrel.Eq{"finished_item_id": *filter.FinishedItemID})
	}
	if filter.MachineID != nil {
		q = q.Where(squirrel.Eq{"machine_id": *filter.MachineID})
	}
	if filter.StartedFrom != nil {
		q = q.Where(squirrel.GtOrEq{"start_at": *filter.StartedFrom})
	}
	if filter.StartedTo != nil {
		q = q.Where(squirrel.LtOrEq{"start_at": *filter.StartedTo})
	}

	q = q.OrderBy("start_at DESC")

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

	var logs []*production.ProductionLog
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &logs, sql, args...); err != nil {
		return nil, fmt.Errorf("select production logs: %w", err)
	}

	return logs, nil
}

// CreateCrew inserts crew assignment rows.
func (r *ProductionRepo) CreateCrew(ctx context.Context, crew []production.CrewAssignment) error {
	if len(crew) == 0 {
		return nil
	}

	q := r.builder.Insert(productionCrewTable).Columns(crewColumns...)
	for _, c := range crew {
		q = q.Values(c.LineID, c.LogID, c.EmployeeID, c.Role, c.StartAt, c.EndAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert crew: %w", err)
	}

	return nil
}

// UpdateCrew persists an assignment's end time.
func (r *ProductionRepo) UpdateCrew(ctx context.Context, crew *production.CrewAssignment) error {
	q := r.builder.Update(productionCrewTable).
		Set("role", crew.Role).
		Set("end_at", crew.EndAt).
		Where(squirrel.Eq{"line_id": crew.LineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update crew: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("crew assignment", crew.LineID.String())
	}

	return nil
}

func (r *ProductionRepo) getCrew(ctx context.Context, logID id.ID) ([]production.CrewAssignment, error) {
	q := r.builder.Select(crewColumns...).
		From(productionCrewTable).
		Where(squirrel.Eq{"log_id": logID}).
		OrderBy("start_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var crew []production.CrewAssignment
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &crew, sql, args...); err != nil {
		return nil, fmt.Errorf("get crew: %w", err)
	}

	return crew, nil
}

// Ensure interface compliance.
var _ production.Repository = (*ProductionRepo)(nil)
