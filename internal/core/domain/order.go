package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderItem is a line of an order with the unit price captured at purchase.
type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice Money
}

func (i OrderItem) Subtotal() (Money, error) {
	return i.UnitPrice.MultiplyInt(i.Quantity)
}

// Order is a reservation of product stock from a single seller.
type Order struct {
	aggregate

	userID             uuid.UUID
	sellerID           uuid.UUID
	items              []OrderItem
	total              Money
	status             OrderStatus
	paymentID          string
	trackingNumber     string
	cancellationReason string
	paidAt             *time.Time
	cancelledAt        *time.Time
	deliveredAt        *time.Time
}

type OrderAttrs struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	SellerID           uuid.UUID
	Items              []OrderItem
	Total              Money
	Status             OrderStatus
	PaymentID          string
	TrackingNumber     string
	CancellationReason string
	PaidAt             *time.Time
	CancelledAt        *time.Time
	DeliveredAt        *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder returns an order awaiting payment whose total is the sum of its
// line subtotals.
func NewOrder(userID, sellerID uuid.UUID, items []OrderItem) (*Order, error) {
	total, err := sumItems(items)
	if err != nil {
		return nil, err
	}
	o := &Order{
		aggregate: newAggregate(),
		userID:    userID,
		sellerID:  sellerID,
		items:     append([]OrderItem(nil), items...),
		total:     total,
		status:    OrderPendingPayment,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func RestoreOrder(a OrderAttrs) (*Order, error) {
	if err := checkRestoredVersion("order", a.ID, a.Version); err != nil {
		return nil, err
	}
	o := &Order{
		aggregate:          restoredAggregate(a.ID, a.Version, a.CreatedAt, a.UpdatedAt),
		userID:             a.UserID,
		sellerID:           a.SellerID,
		items:              append([]OrderItem(nil), a.Items...),
		total:              a.Total,
		status:             a.Status,
		paymentID:          a.PaymentID,
		trackingNumber:     a.TrackingNumber,
		cancellationReason: a.CancellationReason,
		paidAt:             a.PaidAt,
		cancelledAt:        a.CancelledAt,
		deliveredAt:        a.DeliveredAt,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func sumItems(items []OrderItem) (Money, error) {
	if len(items) == 0 {
		return Money{}, validationf("order requires at least one item")
	}
	total := ZeroMoney(items[0].UnitPrice.Currency())
	for _, item := range items {
		if item.Quantity < 1 {
			return Money{}, validationf("item %s quantity must be positive, got %d", item.ProductID, item.Quantity)
		}
		sub, err := item.Subtotal()
		if err != nil {
			return Money{}, err
		}
		if total, err = total.Add(sub); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (o *Order) validate() error {
	if o.userID == uuid.Nil || o.sellerID == uuid.Nil {
		return validationf("order requires user and seller")
	}
	if !o.status.Valid() {
		return validationf("unknown order status %q", o.status)
	}
	expected, err := sumItems(o.items)
	if err != nil {
		return err
	}
	if !expected.Equal(o.total) {
		return validationf("order total %s does not match items %s", o.total, expected)
	}
	return nil
}

func (o *Order) UserID() uuid.UUID          { return o.userID }
func (o *Order) SellerID() uuid.UUID        { return o.sellerID }
func (o *Order) Items() []OrderItem         { return append([]OrderItem(nil), o.items...) }
func (o *Order) Total() Money               { return o.total }
func (o *Order) Status() OrderStatus        { return o.status }
func (o *Order) PaymentID() string          { return o.paymentID }
func (o *Order) TrackingNumber() string     { return o.trackingNumber }
func (o *Order) CancellationReason() string { return o.cancellationReason }
func (o *Order) PaidAt() *time.Time         { return o.paidAt }
func (o *Order) CancelledAt() *time.Time    { return o.cancelledAt }
func (o *Order) DeliveredAt() *time.Time    { return o.deliveredAt }
func (o *Order) HasPayment() bool           { return o.paymentID != "" }

func (o *Order) CanBeCancelled() bool {
	return o.status == OrderPendingPayment || o.status == OrderPending || o.status == OrderPaid
}

// RequiresRefund reports whether cancelling now means returning a settled payment.
func (o *Order) RequiresRefund() bool {
	return o.status == OrderPaid && o.HasPayment()
}

func (o *Order) transition(to OrderStatus) error {
	if !o.status.CanTransitionTo(to) {
		return &TransitionError{Entity: "order", From: string(o.status), To: string(to)}
	}
	o.status = to
	o.bump()
	return nil
}

func (o *Order) MarkPaid(at time.Time) error {
	if err := o.transition(OrderPaid); err != nil {
		return err
	}
	o.paidAt = &at
	return nil
}

// AwaitsSettlement reports whether a payment can still be applied to the order.
func (o *Order) AwaitsSettlement() bool {
	return o.status == OrderPendingPayment || o.status == OrderPending
}

// SettlePayment records paymentID and moves the order to status to in a
// single version step. Passing the current status only records the
// reference. It reports false when the order already carries both.
func (o *Order) SettlePayment(paymentID string, to OrderStatus, at time.Time) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, validationf("payment reference is required")
	}
	switch to {
	case OrderPaid, OrderPending, OrderPaymentFailed:
	default:
		if to != o.status {
			return false, &TransitionError{Entity: "order", From: string(o.status), To: string(to)}
		}
	}

	refChanged := o.paymentID != paymentID
	statusChanged := o.status != to
	if !refChanged && !statusChanged {
		return false, nil
	}
	if refChanged && !o.AwaitsSettlement() && !(o.status == OrderPaid && o.paymentID == "") {
		return false, &TransitionError{Entity: "order", From: string(o.status), To: "PAYMENT_ATTACHED"}
	}
	if statusChanged && !o.status.CanTransitionTo(to) {
		return false, &TransitionError{Entity: "order", From: string(o.status), To: string(to)}
	}

	o.paymentID = paymentID
	if statusChanged {
		o.status = to
		if to == OrderPaid {
			o.paidAt = &at
		}
	}
	o.bump()
	return true, nil
}

func (o *Order) MarkPending() error       { return o.transition(OrderPending) }
func (o *Order) MarkPaymentFailed() error { return o.transition(OrderPaymentFailed) }
func (o *Order) StartProcessing() error   { return o.transition(OrderProcessing) }

func (o *Order) Ship(trackingNumber string) error {
	if err := o.transition(OrderShipped); err != nil {
		return err
	}
	o.trackingNumber = strings.TrimSpace(trackingNumber)
	return nil
}

func (o *Order) Deliver(at time.Time) error {
	if err := o.transition(OrderDelivered); err != nil {
		return err
	}
	o.deliveredAt = &at
	return nil
}

func (o *Order) Cancel(reason string, at time.Time) error {
	if err := o.transition(OrderCancelled); err != nil {
		return err
	}
	o.cancellationReason = strings.TrimSpace(reason)
	o.cancelledAt = &at
	return nil
}

// Expire cancels an order whose payment never settled, including one whose
// payment already failed.
func (o *Order) Expire(at time.Time) error {
	if !o.status.AwaitsPayment() {
		return &TransitionError{Entity: "order", From: string(o.status), To: string(OrderCancelled)}
	}
	o.status = OrderCancelled
	o.cancellationReason = ExpiryReason
	o.cancelledAt = &at
	o.bump()
	return nil
}

func (o *Order) Attrs() OrderAttrs {
	return OrderAttrs{
		ID:                 o.id,
		UserID:             o.userID,
		SellerID:           o.sellerID,
		Items:              o.Items(),
		Total:              o.total,
		Status:             o.status,
		PaymentID:          o.paymentID,
		TrackingNumber:     o.trackingNumber,
		CancellationReason: o.cancellationReason,
		PaidAt:             o.paidAt,
		CancelledAt:        o.cancelledAt,
		DeliveredAt:        o.deliveredAt,
		Version:            o.version,
		CreatedAt:          o.createdAt,
		UpdatedAt:          o.updatedAt,
	}
}
