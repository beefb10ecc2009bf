package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingCompleted     = "booking.completed"
	EventBookingPaymentFailed = "booking.payment_failed"
	EventOrderCreated         = "order.created"
	EventOrderPaid            = "order.paid"
	EventOrderCancelled       = "order.cancelled"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderPaymentFailed   = "order.payment_failed"
	EventReservationExpired   = "reservation.expired"

	// EventPaymentRefundRequired marks a settled payment that no longer has
	// a reservation to pay for.
	EventPaymentRefundRequired = "payment.refund_required"
)

// Event is a fact published after the transaction that produced it commits.
// Type doubles as the routing key.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	AggregateID uuid.UUID      `json:"aggregate_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data"`
}

func NewEvent(eventType string, aggregateID uuid.UUID, at time.Time, data map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  at,
		Data:        data,
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
