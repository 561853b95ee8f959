package reports

import "context"

// Repository defines report data access built on read-only aggregate
// queries over the ledger and production tables.
type Repository interface {
	GetOnHandReport(ctx context.Context, filter OnHandFilter) (*OnHandReport, error)
	GetTurnoverReport(ctx context.Context, filter TurnoverFilter) (*TurnoverReport, error)
	GetProductionVarianceReport(ctx context.Context, filter ProductionVarianceFilter) (*ProductionVarianceReport, error)
}
