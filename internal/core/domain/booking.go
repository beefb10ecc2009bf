package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExpiryReason is recorded on reservations cancelled by reconciliation.
const ExpiryReason = "payment timeout"

// Booking is a reservation of seats on a time slot.
type Booking struct {
	aggregate

	userID             uuid.UUID
	experienceID       uuid.UUID
	timeSlotID         uuid.UUID
	guestCount         int
	totalPrice         Money
	status             BookingStatus
	paymentID          string
	notes              string
	cancellationReason string
	confirmedAt        *time.Time
	cancelledAt        *time.Time
	completedAt        *time.Time
}

type BookingAttrs struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	ExperienceID       uuid.UUID
	TimeSlotID         uuid.UUID
	GuestCount         int
	TotalPrice         Money
	Status             BookingStatus
	PaymentID          string
	Notes              string
	CancellationReason string
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CompletedAt        *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type NewBookingParams struct {
	UserID       uuid.UUID
	ExperienceID uuid.UUID
	TimeSlotID   uuid.UUID
	GuestCount   GuestCount
	TotalPrice   Money
	Notes        string
}

// NewBooking returns a booking awaiting payment.
func NewBooking(p NewBookingParams) (*Booking, error) {
	b := &Booking{
		aggregate:    newAggregate(),
		userID:       p.UserID,
		experienceID: p.ExperienceID,
		timeSlotID:   p.TimeSlotID,
		guestCount:   p.GuestCount.Value(),
		totalPrice:   p.TotalPrice,
		status:       BookingPendingPayment,
		notes:        strings.TrimSpace(p.Notes),
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func RestoreBooking(a BookingAttrs) (*Booking, error) {
	if err := checkRestoredVersion("booking", a.ID, a.Version); err != nil {
		return nil, err
	}
	b := &Booking{
		aggregate:          restoredAggregate(a.ID, a.Version, a.CreatedAt, a.UpdatedAt),
		userID:             a.UserID,
		experienceID:       a.ExperienceID,
		timeSlotID:         a.TimeSlotID,
		guestCount:         a.GuestCount,
		totalPrice:         a.TotalPrice,
		status:             a.Status,
		paymentID:          a.PaymentID,
		notes:              a.Notes,
		cancellationReason: a.CancellationReason,
		confirmedAt:        a.ConfirmedAt,
		cancelledAt:        a.CancelledAt,
		completedAt:        a.CompletedAt,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Booking) validate() error {
	if b.userID == uuid.Nil || b.experienceID == uuid.Nil || b.timeSlotID == uuid.Nil {
		return validationf("booking requires user, experience and time slot")
	}
	if b.guestCount < 1 {
		return validationf("booking guest count must be positive, got %d", b.guestCount)
	}
	if !b.status.Valid() {
		return validationf("unknown booking status %q", b.status)
	}
	return nil
}

func (b *Booking) UserID() uuid.UUID          { return b.userID }
func (b *Booking) ExperienceID() uuid.UUID    { return b.experienceID }
func (b *Booking) TimeSlotID() uuid.UUID      { return b.timeSlotID }
func (b *Booking) GuestCount() int            { return b.guestCount }
func (b *Booking) TotalPrice() Money          { return b.totalPrice }
func (b *Booking) Status() BookingStatus      { return b.status }
func (b *Booking) PaymentID() string          { return b.paymentID }
func (b *Booking) Notes() string              { return b.notes }
func (b *Booking) CancellationReason() string { return b.cancellationReason }
func (b *Booking) ConfirmedAt() *time.Time    { return b.confirmedAt }
func (b *Booking) CancelledAt() *time.Time    { return b.cancelledAt }
func (b *Booking) CompletedAt() *time.Time    { return b.completedAt }
func (b *Booking) HasPayment() bool           { return b.paymentID != "" }

func (b *Booking) CanBeConfirmed() bool {
	return b.status == BookingPendingPayment || b.status == BookingPending
}

func (b *Booking) CanBeCancelled() bool {
	return b.status == BookingPendingPayment || b.status == BookingPending || b.status == BookingConfirmed
}

func (b *Booking) CanBeCompleted() bool { return b.status == BookingConfirmed }

// HoldsCapacity reports whether the booking's seats are still counted on
// its time slot.
func (b *Booking) HoldsCapacity() bool {
	return b.status != BookingCancelled
}

func (b *Booking) transition(to BookingStatus) error {
	if !b.status.CanTransitionTo(to) {
		return &TransitionError{Entity: "booking", From: string(b.status), To: string(to)}
	}
	b.status = to
	b.bump()
	return nil
}

func (b *Booking) Confirm(at time.Time) error {
	if err := b.transition(BookingConfirmed); err != nil {
		return err
	}
	b.confirmedAt = &at
	return nil
}

// ConfirmWithPayment confirms the booking and records the reference that
// paid for it as one mutation.
func (b *Booking) ConfirmWithPayment(paymentID string, at time.Time) error {
	if !b.CanBeConfirmed() {
		return &TransitionError{Entity: "booking", From: string(b.status), To: string(BookingConfirmed)}
	}
	_, err := b.SettlePayment(paymentID, BookingConfirmed, at)
	return err
}

// SettlePayment records paymentID and moves the booking to status to in a
// single version step. Passing the current status only records the
// reference. It reports false when the booking already carries both.
//
// A reference can be recorded while the booking awaits settlement, or on a
// confirmed booking that was settled without one.
func (b *Booking) SettlePayment(paymentID string, to BookingStatus, at time.Time) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, validationf("payment reference is required")
	}
	switch to {
	case BookingConfirmed, BookingPending, BookingPaymentFailed:
	default:
		if to != b.status {
			return false, &TransitionError{Entity: "booking", From: string(b.status), To: string(to)}
		}
	}

	refChanged := b.paymentID != paymentID
	statusChanged := b.status != to
	if !refChanged && !statusChanged {
		return false, nil
	}
	if refChanged && !b.CanBeConfirmed() && !(b.status == BookingConfirmed && b.paymentID == "") {
		return false, &TransitionError{Entity: "booking", From: string(b.status), To: "PAYMENT_ATTACHED"}
	}
	if statusChanged && !b.status.CanTransitionTo(to) {
		return false, &TransitionError{Entity: "booking", From: string(b.status), To: string(to)}
	}

	b.paymentID = paymentID
	if statusChanged {
		b.status = to
		if to == BookingConfirmed {
			b.confirmedAt = &at
		}
	}
	b.bump()
	return true, nil
}

func (b *Booking) MarkPending() error {
	return b.transition(BookingPending)
}

func (b *Booking) MarkPaymentFailed() error {
	return b.transition(BookingPaymentFailed)
}

func (b *Booking) Cancel(reason string, at time.Time) error {
	if err := b.transition(BookingCancelled); err != nil {
		return err
	}
	b.cancellationReason = strings.TrimSpace(reason)
	b.cancelledAt = &at
	return nil
}

func (b *Booking) Complete(at time.Time) error {
	if err := b.transition(BookingCompleted); err != nil {
		return err
	}
	b.completedAt = &at
	return nil
}

// Expire cancels a booking whose payment never settled. Unlike Cancel it
// also accepts PAYMENT_FAILED.
func (b *Booking) Expire(at time.Time) error {
	if !b.status.AwaitsPayment() {
		return &TransitionError{Entity: "booking", From: string(b.status), To: string(BookingCancelled)}
	}
	b.status = BookingCancelled
	b.cancellationReason = ExpiryReason
	b.cancelledAt = &at
	b.bump()
	return nil
}

func (b *Booking) Attrs() BookingAttrs {
	return BookingAttrs{
		ID:                 b.id,
		UserID:             b.userID,
		ExperienceID:       b.experienceID,
		TimeSlotID:         b.timeSlotID,
		GuestCount:         b.guestCount,
		TotalPrice:         b.totalPrice,
		Status:             b.status,
		PaymentID:          b.paymentID,
		Notes:              b.notes,
		CancellationReason: b.cancellationReason,
		ConfirmedAt:        b.confirmedAt,
		CancelledAt:        b.cancelledAt,
		CompletedAt:        b.completedAt,
		Version:            b.version,
		CreatedAt:          b.createdAt,
		UpdatedAt:          b.updatedAt,
	}
}
