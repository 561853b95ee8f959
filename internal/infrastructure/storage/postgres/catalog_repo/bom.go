package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/domain/bom"
	"plantops/internal/infrastructure/storage/postgres"
)

const (
	bomTable      = "cat_boms"
	bomLinesTable = "cat_bom_lines"
)

// BOMRepo implements bom.Repository.
type BOMRepo struct {
	*BaseCatalogRepo[*bom.BOM]
}

// NewBOMRepo creates a new BOM repository.
func NewBOMRepo() *BOMRepo {
	return &BOMRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			bomTable,
			postgres.ExtractDBColumns[bom.BOM](),
			func() *bom.BOM { return &bom.BOM{} },
		),
	}
}

// Create inserts the BOM and its lines.
func (r *BOMRepo) Create(ctx context.Context, b *bom.BOM) error {
	if err := r.BaseCatalogRepo.Create(ctx, b); err != nil {
		return err
	}
	return r.saveLines(ctx, b)
}

// Update persists the BOM and replaces its lines.
func (r *BOMRepo) Update(ctx context.Context, b *bom.BOM) error {
	if err := r.BaseCatalogRepo.Update(ctx, b); err != nil {
		return err
	}
	return r.saveLines(ctx, b)
}

// GetActiveForItem returns the highest active version with lines.
func (r *BOMRepo) GetActiveForItem(ctx context.Context, finishedItemID string) (*bom.BOM, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{
			"finished_item_id": finishedItemID,
			"is_active":        true,
			"deletion_mark":    false,
		}).
		OrderBy("bom_version DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	b := &bom.BOM{}
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bom", finishedItemID)
		}
		return nil, fmt.Errorf("get active bom: %w", err)
	}

	lines, err := r.getLines(ctx, b)
	if err != nil {
		return nil, err
	}
	b.Lines = lines

	return b, nil
}

// ListVersions returns every version for a finished item, newest first.
func (r *BOMRepo) ListVersions(ctx context.Context, finishedItemID string) ([]*bom.BOM, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{
			"finished_item_id": finishedItemID,
			"deletion_mark":    false,
		}).
		OrderBy("bom_version DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var versions []*bom.BOM
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &versions, sql, args...); err != nil {
		return nil, fmt.Errorf("list bom versions: %w", err)
	}

	return versions, nil
}

func (r *BOMRepo) getLines(ctx context.Context, b *bom.BOM) ([]bom.Line, error) {
	q := r.Builder().
		Select("line_id", "bom_id", "raw_item_id", "quantity", "line_number", "notes").
		From(bomLinesTable).
		Where(squirrel.Eq{"bom_id": b.ID}).
		OrderBy("line_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []bom.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get bom lines: %w", err)
	}

	return lines, nil
}

func (r *BOMRepo) saveLines(ctx context.Context, b *bom.BOM) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + bomLinesTable + " WHERE bom_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, b.ID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(b.Lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(bomLinesTable).
		Columns("line_id", "bom_id", "raw_item_id", "quantity", "line_number", "notes")

	for i := range b.Lines {
		line := &b.Lines[i]
		if id.IsNil(line.LineID) {
			line.LineID = id.New()
		}
		if line.LineNumber == 0 {
			line.LineNumber = i + 1
		}
		q = q.Values(line.LineID, b.ID, line.RawItemID, line.Quantity, line.LineNumber, line.Notes)
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

// Ensure interface compliance.
var _ bom.Repository = (*BOMRepo)(nil)
