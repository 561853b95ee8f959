package postgres

import (
	"context"

	"plantops/internal/core/entity"
	"plantops/internal/domain/ledger"
)

// EventStockMovementRecorded is emitted for every ledger line appended.
const EventStockMovementRecorded = "stock.movement.recorded"

// MovementEventSink feeds recorded stock movements into the transactional
// outbox. The recorder calls it inside the recording transaction, so the
// event row commits together with the movement and the balance update.
type MovementEventSink struct {
	publisher *OutboxPublisher
}

// NewMovementEventSink creates a sink backed by the outbox publisher.
func NewMovementEventSink(publisher *OutboxPublisher) *MovementEventSink {
	return &MovementEventSink{publisher: publisher}
}

// MovementRecorded publishes the movement as an outbox event.
func (s *MovementEventSink) MovementRecorded(ctx context.Context, m *entity.StockMovement) error {
	return s.publisher.Publish(ctx, DomainEvent{
		AggregateType: "StockMovement",
		AggregateID:   m.LineID,
		EventType:     EventStockMovementRecorded,
		Payload:       m,
	})
}

var _ ledger.EventSink = (*MovementEventSink)(nil)
