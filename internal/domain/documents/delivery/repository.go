package delivery

import (
	"context"
	"time"

	"plantops/internal/core/id"
	"plantops/internal/domain"
)

// Repository defines operations for delivery documents.
type Repository interface {
	Create(ctx context.Context, doc *Delivery) error
	GetByID(ctx context.Context, docID id.ID) (*Delivery, error)
	GetByNumber(ctx context.Context, number string) (*Delivery, error)
	Update(ctx context.Context, doc *Delivery) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]DeliveryLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []DeliveryLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Delivery], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Delivery, error)
}

// ListFilter for filtering deliverys.
type ListFilter struct {
	domain.ListFilter

	Kind         *Kind
	CustomerName *string
	ZoneID       *id.ID
	Posted       *bool
	DateFrom     *time.Time
	DateTo       *time.Time
}
