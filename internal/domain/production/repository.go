package production

import (
	"context"
	"time"

	"plantops/internal/core/id"
)

// Filter narrows production log listings.
type Filter struct {
	CompanyID      string
	Status         *Status
	Purpose        *Purpose
	FinishedItemID *string
	MachineID      *string
	StartedFrom    *time.Time
	StartedTo      *time.Time
	Limit          int
	Offset         int
}

// Repository defines the interface for production log persistence.
// GetForUpdate is the serialization point for concurrent closes against
// the same log.
type Repository interface {
	Create(ctx context.Context, log *ProductionLog) error
	GetByID(ctx context.Context, logID id.ID) (*ProductionLog, error)
	GetForUpdate(ctx context.Context, logID id.ID) (*ProductionLog, error)
	Update(ctx context.Context, log *ProductionLog) error
	List(ctx context.Context, filter Filter) ([]*ProductionLog, error)

	// CreateCrew inserts crew assignment rows.
	CreateCrew(ctx context.Context, crew []CrewAssignment) error

	// UpdateCrew persists an assignment's end time.
	UpdateCrew(ctx context.Context, crew *CrewAssignment) error
}
