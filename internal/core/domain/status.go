package domain

type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingPending        BookingStatus = "PENDING"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingCompleted      BookingStatus = "COMPLETED"
	BookingCancelled      BookingStatus = "CANCELLED"
	BookingPaymentFailed  BookingStatus = "PAYMENT_FAILED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPendingPayment: {BookingConfirmed, BookingPending, BookingCancelled, BookingPaymentFailed},
	BookingPending:        {BookingConfirmed, BookingCancelled},
	BookingConfirmed:      {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether the user-facing booking state machine
// allows moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return contains(bookingTransitions[s], next)
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0 && s != BookingPaymentFailed
}

// AwaitsPayment reports whether a booking in this status still holds seats
// without a settled payment.
func (s BookingStatus) AwaitsPayment() bool {
	return s == BookingPendingPayment || s == BookingPaymentFailed
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPendingPayment, BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled, BookingPaymentFailed:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderPending        OrderStatus = "PENDING"
	OrderPaid           OrderStatus = "PAID"
	OrderProcessing     OrderStatus = "PROCESSING"
	OrderShipped        OrderStatus = "SHIPPED"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
	OrderPaymentFailed  OrderStatus = "PAYMENT_FAILED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendingPayment: {OrderPaid, OrderPending, OrderCancelled, OrderPaymentFailed},
	OrderPending:        {OrderPaid, OrderCancelled},
	OrderPaid:           {OrderProcessing, OrderCancelled},
	OrderProcessing:     {OrderShipped},
	OrderShipped:        {OrderDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return contains(orderTransitions[s], next)
}

func (s OrderStatus) AwaitsPayment() bool {
	return s == OrderPendingPayment || s == OrderPaymentFailed
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPendingPayment, OrderPending, OrderPaid, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderPaymentFailed:
		return true
	}
	return false
}

// expirable lists the statuses the reconciliation job may cancel. It is
// wider than the user-facing cancel edge because PAYMENT_FAILED still holds
// capacity.
var (
	expirableBookings = []BookingStatus{BookingPendingPayment, BookingPaymentFailed}
	expirableOrders   = []OrderStatus{OrderPendingPayment, OrderPaymentFailed}
)

// StaleBookingStatuses returns the statuses scanned by reconciliation.
func StaleBookingStatuses() []BookingStatus {
	return append([]BookingStatus(nil), expirableBookings...)
}

func StaleOrderStatuses() []OrderStatus {
	return append([]OrderStatus(nil), expirableOrders...)
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
