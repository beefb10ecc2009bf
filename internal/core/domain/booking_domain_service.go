package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// BookingDomainService holds the booking rules that span more than one
// aggregate. It never touches storage and never mutates the time slot;
// reserving seats is the caller's step inside its transaction.
type BookingDomainService struct{}

func NewBookingDomainService() *BookingDomainService {
	return &BookingDomainService{}
}

// CreateBooking validates a request for guestCount seats on slot and returns
// a new booking awaiting payment.
func (s *BookingDomainService) CreateBooking(exp *Experience, slot *TimeSlot, userID uuid.UUID, guestCount int, notes string) (*Booking, error) {
	if !exp.IsActive() {
		return nil, fmt.Errorf("%w: %s", ErrInactiveExperience, exp.ID())
	}
	if slot.ExperienceID() != exp.ID() {
		return nil, fmt.Errorf("%w: slot %s, experience %s", ErrSlotMismatch, slot.ID(), exp.ID())
	}
	guests, err := NewGuestCount(guestCount, exp.MaxCapacity())
	if err != nil {
		return nil, err
	}
	if !slot.CanAccommodate(guests.Value()) {
		return nil, &CapacityError{Available: slot.AvailableSpots(), Requested: guests.Value()}
	}
	total, err := exp.Price().MultiplyInt(guests.Value())
	if err != nil {
		return nil, err
	}
	return NewBooking(NewBookingParams{
		UserID:       userID,
		ExperienceID: exp.ID(),
		TimeSlotID:   slot.ID(),
		GuestCount:   guests,
		TotalPrice:   total,
		Notes:        notes,
	})
}

// CancellationCheck is the outcome of ValidateCancellation.
type CancellationCheck struct {
	CanCancel      bool
	RequiresRefund bool
	Reason         string
}

func (s *BookingDomainService) ValidateCancellation(b *Booking) CancellationCheck {
	switch b.Status() {
	case BookingCompleted:
		return CancellationCheck{Reason: "completed bookings cannot be cancelled"}
	case BookingCancelled:
		return CancellationCheck{Reason: "booking is already cancelled"}
	}
	if !b.CanBeCancelled() {
		return CancellationCheck{Reason: fmt.Sprintf("bookings in status %s cannot be cancelled", b.Status())}
	}
	return CancellationCheck{
		CanCancel:      true,
		RequiresRefund: b.Status() == BookingConfirmed && b.HasPayment(),
	}
}

// AuthorizeCancellation allows the guest who booked or the experience host.
func (s *BookingDomainService) AuthorizeCancellation(b *Booking, exp *Experience, actorID uuid.UUID) error {
	if b.UserID() == actorID || exp.IsHostedBy(actorID) {
		return nil
	}
	return fmt.Errorf("%w: user %s cannot cancel booking %s", ErrForbidden, actorID, b.ID())
}

// AuthorizeCompletion allows only the experience host to mark a booking done.
func (s *BookingDomainService) AuthorizeCompletion(b *Booking, exp *Experience, actorID uuid.UUID) error {
	if exp.IsHostedBy(actorID) {
		return nil
	}
	return fmt.Errorf("%w: only the host can complete booking %s", ErrForbidden, b.ID())
}
