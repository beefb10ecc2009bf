package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

const paymentCanceledReason = "payment canceled"

// PaymentService drives booking and order transitions from the state of
// their payment at the gateway.
type PaymentService struct {
	base
	payments ports.PaymentStatusProvider
}

func NewPaymentService(repo ports.Repository, payments ports.PaymentStatusProvider, opts ...Option) *PaymentService {
	return &PaymentService{base: newBase(repo, opts), payments: payments}
}

// ProcessBookingPayment links paymentRef to the booking and applies the
// payment's current status. The gateway is queried before the transaction
// opens.
//
// A succeeded payment on a booking that can no longer be confirmed is
// reported as a refund and rejected with an invalid state transition.
func (s *PaymentService) ProcessBookingPayment(ctx context.Context, bookingID uuid.UUID, paymentRef string) (*domain.Booking, error) {
	status, err := s.payments.GetPaymentStatus(ctx, paymentRef)
	if err != nil {
		return nil, fmt.Errorf("payment status %s: %w", paymentRef, err)
	}

	var (
		booking  *domain.Booking
		released bool
		stranded bool
		before   domain.BookingStatus
	)
	err = s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		b, err := tx.FindBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		before = b.Status()
		booking = b
		released, stranded = false, false

		var changed bool
		switch status {
		case ports.PaymentSucceeded:
			switch {
			case b.CanBeConfirmed(), b.Status() == domain.BookingConfirmed && !b.HasPayment():
				changed, err = b.SettlePayment(paymentRef, domain.BookingConfirmed, s.now())
			case b.PaymentID() == paymentRef && (b.Status() == domain.BookingConfirmed || b.Status() == domain.BookingCompleted):
				// Already settled by this payment.
			default:
				stranded = true
				return nil
			}
		case ports.PaymentProcessing:
			if b.CanBeConfirmed() {
				changed, err = b.SettlePayment(paymentRef, domain.BookingPending, s.now())
			}
		case ports.PaymentRequiresPaymentMethod:
			switch b.Status() {
			case domain.BookingPendingPayment:
				changed, err = b.SettlePayment(paymentRef, domain.BookingPaymentFailed, s.now())
			case domain.BookingPending:
				changed, err = b.SettlePayment(paymentRef, domain.BookingPending, s.now())
			}
		case ports.PaymentCanceled:
			if b.CanBeCancelled() {
				now := s.now()
				if _, err := releaseBookingHold(ctx, tx, b, func(b *domain.Booking) error {
					return b.Cancel(paymentCanceledReason, now)
				}); err != nil {
					return err
				}
				released = true
			}
		default:
			err = fmt.Errorf("%w: unknown payment status %q", domain.ErrValidation, status)
		}
		if err != nil {
			return err
		}
		if changed {
			return tx.SaveBooking(ctx, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("process booking payment: %w", err)
	}

	if stranded {
		s.log.Error("settled payment has no booking to confirm",
			"booking_id", booking.ID(), "payment_id", paymentRef, "booking_status", booking.Status())
		s.publish(ctx, ports.EventPaymentRefundRequired, booking.ID(), map[string]any{
			"aggregate":  "booking",
			"user_id":    booking.UserID(),
			"payment_id": paymentRef,
			"status":     booking.Status(),
			"amount":     booking.TotalPrice().String(),
		})
		return nil, fmt.Errorf("process booking payment: payment %s settled: %w", paymentRef,
			&domain.TransitionError{Entity: "booking", From: string(booking.Status()), To: string(domain.BookingConfirmed)})
	}

	s.log.Info("booking payment processed",
		"booking_id", booking.ID(), "payment_status", status, "from", before, "to", booking.Status())
	if released {
		s.invalidateSlots(ctx, booking.ExperienceID())
	}
	if before != booking.Status() {
		s.publish(ctx, bookingEventFor(booking.Status()), booking.ID(), map[string]any{
			"user_id":    booking.UserID(),
			"payment_id": paymentRef,
			"reason":     booking.CancellationReason(),
		})
	}
	return booking, nil
}

// ProcessOrderPayment is ProcessBookingPayment for orders.
func (s *PaymentService) ProcessOrderPayment(ctx context.Context, orderID uuid.UUID, paymentRef string) (*domain.Order, error) {
	status, err := s.payments.GetPaymentStatus(ctx, paymentRef)
	if err != nil {
		return nil, fmt.Errorf("payment status %s: %w", paymentRef, err)
	}

	var (
		order    *domain.Order
		stranded bool
		before   domain.OrderStatus
	)
	err = s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		o, err := tx.FindOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		before = o.Status()
		order = o
		stranded = false

		var changed bool
		switch status {
		case ports.PaymentSucceeded:
			switch {
			case o.AwaitsSettlement(), o.Status() == domain.OrderPaid && !o.HasPayment():
				changed, err = o.SettlePayment(paymentRef, domain.OrderPaid, s.now())
			case o.PaymentID() == paymentRef && o.Status() != domain.OrderPaymentFailed && o.Status() != domain.OrderCancelled:
				// Already settled by this payment.
			default:
				stranded = true
				return nil
			}
		case ports.PaymentProcessing:
			if o.AwaitsSettlement() {
				changed, err = o.SettlePayment(paymentRef, domain.OrderPending, s.now())
			}
		case ports.PaymentRequiresPaymentMethod:
			switch o.Status() {
			case domain.OrderPendingPayment:
				changed, err = o.SettlePayment(paymentRef, domain.OrderPaymentFailed, s.now())
			case domain.OrderPending:
				changed, err = o.SettlePayment(paymentRef, domain.OrderPending, s.now())
			}
		case ports.PaymentCanceled:
			if o.CanBeCancelled() {
				now := s.now()
				return releaseOrderHold(ctx, tx, o, func(o *domain.Order) error {
					return o.Cancel(paymentCanceledReason, now)
				})
			}
		default:
			err = fmt.Errorf("%w: unknown payment status %q", domain.ErrValidation, status)
		}
		if err != nil {
			return err
		}
		if changed {
			return tx.SaveOrder(ctx, o)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("process order payment: %w", err)
	}

	if stranded {
		s.log.Error("settled payment has no order to pay",
			"order_id", order.ID(), "payment_id", paymentRef, "order_status", order.Status())
		s.publish(ctx, ports.EventPaymentRefundRequired, order.ID(), map[string]any{
			"aggregate":  "order",
			"user_id":    order.UserID(),
			"payment_id": paymentRef,
			"status":     order.Status(),
			"amount":     order.Total().String(),
		})
		return nil, fmt.Errorf("process order payment: payment %s settled: %w", paymentRef,
			&domain.TransitionError{Entity: "order", From: string(order.Status()), To: string(domain.OrderPaid)})
	}

	s.log.Info("order payment processed",
		"order_id", order.ID(), "payment_status", status, "from", before, "to", order.Status())
	if before != order.Status() {
		s.publish(ctx, orderEventFor(order.Status()), order.ID(), map[string]any{
			"user_id":    order.UserID(),
			"payment_id": paymentRef,
		})
	}
	return order, nil
}

// SyncReport summarises one SyncPendingPayments pass.
type SyncReport struct {
	Processed int         `json:"processed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// SyncPendingPayments replays the gateway status of every unsettled booking
// and order that already carries a payment reference. One item's failure
// does not stop the pass.
func (s *PaymentService) SyncPendingPayments(ctx context.Context, limit int) (SyncReport, error) {
	var report SyncReport
	now := s.now()

	bookings, err := s.repo.FindBookingsByStatus(ctx,
		[]domain.BookingStatus{domain.BookingPendingPayment, domain.BookingPending}, now, ports.Cursor{}, limit)
	if err != nil {
		return report, fmt.Errorf("list unsettled bookings: %w", err)
	}
	for _, b := range bookings {
		if !b.HasPayment() {
			continue
		}
		if _, err := s.ProcessBookingPayment(ctx, b.ID(), b.PaymentID()); err != nil {
			s.log.Error("booking payment sync failed", "booking_id", b.ID(), "err", err)
			report.Errors = append(report.Errors, ItemError{Aggregate: "booking", ID: b.ID(), Err: err.Error()})
			continue
		}
		report.Processed++
	}

	orders, err := s.repo.FindOrdersByStatus(ctx,
		[]domain.OrderStatus{domain.OrderPendingPayment, domain.OrderPending}, now, ports.Cursor{}, limit)
	if err != nil {
		return report, fmt.Errorf("list unsettled orders: %w", err)
	}
	for _, o := range orders {
		if !o.HasPayment() {
			continue
		}
		if _, err := s.ProcessOrderPayment(ctx, o.ID(), o.PaymentID()); err != nil {
			s.log.Error("order payment sync failed", "order_id", o.ID(), "err", err)
			report.Errors = append(report.Errors, ItemError{Aggregate: "order", ID: o.ID(), Err: err.Error()})
			continue
		}
		report.Processed++
	}
	return report, nil
}

func bookingEventFor(status domain.BookingStatus) string {
	switch status {
	case domain.BookingConfirmed:
		return ports.EventBookingConfirmed
	case domain.BookingCancelled:
		return ports.EventBookingCancelled
	case domain.BookingPaymentFailed:
		return ports.EventBookingPaymentFailed
	}
	return "booking." + strings.ToLower(string(status))
}

func orderEventFor(status domain.OrderStatus) string {
	switch status {
	case domain.OrderPaid:
		return ports.EventOrderPaid
	case domain.OrderCancelled:
		return ports.EventOrderCancelled
	case domain.OrderPaymentFailed:
		return ports.EventOrderPaymentFailed
	}
	return ports.EventOrderStatusChanged
}
