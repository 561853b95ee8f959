package ledger

import (
	"context"
	"time"

	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

// Repository defines storage operations for the ledger and balances.
// Movements are append-only; balances are owned by the recorder.
type Repository interface {
	// Movement operations

	// AppendMovement writes one ledger line
	AppendMovement(ctx context.Context, m *entity.StockMovement) error

	// AppendMovements batch inserts ledger lines (COPY fast path)
	AppendMovements(ctx context.Context, movements []entity.StockMovement) error

	// ListMovements returns movement history with filtering
	ListMovements(ctx context.Context, f MovementFilter) ([]entity.StockMovement, error)

	// GetMovementsByReference retrieves movements caused by a document.
	// version 0 matches every posting cycle.
	GetMovementsByReference(ctx context.Context, refType string, refID id.ID, version int) ([]entity.StockMovement, error)

	// SumMovements returns signed quantity and cost totals for a triple,
	// used by consistency checks and balance rebuilds
	SumMovements(ctx context.Context, companyID, itemID, zoneID id.ID) (types.Quantity, types.Money, error)

	// Balance operations

	// GetBalance returns the current balance; a triple without a row is
	// returned as the empty balance
	GetBalance(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate locks the balance row for the write path.
	// The row lock is the serialization point for concurrent movements
	// against the same (company, item, zone).
	GetBalanceForUpdate(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error)

	// UpsertBalance writes the recomputed balance row
	UpsertBalance(ctx context.Context, b *entity.StockBalance) error

	// ListBalances returns balances with filtering (reporting, snapshot reads)
	ListBalances(ctx context.Context, f BalanceFilter) ([]entity.StockBalance, error)

	// Production support

	// GetIssuedForReference aggregates per-item issued quantity and cost
	// for movements of a type referenced to a document (e.g. raw ISSUE
	// lines of one production log)
	GetIssuedForReference(ctx context.Context, refType string, refID id.ID, movementType entity.MovementType) ([]IssuedLine, error)
}

// IssuedLine is the per-item aggregate of issued stock for one recorder.
type IssuedLine struct {
	ItemID      id.ID          `db:"item_id" json:"itemId"`
	ZoneID      id.ID          `db:"zone_id" json:"zoneId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	TotalCost   types.Money    `db:"total_cost" json:"totalCost"`
	CostPerUnit types.Money    `db:"cost_per_unit" json:"costPerUnit"`
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	CompanyID    *id.ID
	ItemID       *id.ID
	ZoneID       *id.ID
	Direction    *entity.Direction
	MovementType *entity.MovementType
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}

// BalanceFilter for balance queries.
type BalanceFilter struct {
	CompanyID   *id.ID
	ZoneID      *id.ID
	ItemIDs     []id.ID
	ExcludeZero bool
}
