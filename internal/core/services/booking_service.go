package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

type CreateBookingRequest struct {
	UserID       uuid.UUID
	ExperienceID uuid.UUID
	TimeSlotID   uuid.UUID
	GuestCount   int
	Notes        string
}

type CancelBookingRequest struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Reason    string
}

type CancelBookingResult struct {
	Booking        *domain.Booking
	RequiresRefund bool
}

type BookingService struct {
	base
	rules *domain.BookingDomainService
	group singleflight.Group
}

func NewBookingService(repo ports.Repository, opts ...Option) *BookingService {
	return &BookingService{
		base:  newBase(repo, opts),
		rules: domain.NewBookingDomainService(),
	}
}

// CreateBooking reserves seats on a time slot and records a booking awaiting
// payment. The slot decrement and the booking insert commit together.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	var booking *domain.Booking
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		exp, err := tx.FindExperienceByID(ctx, req.ExperienceID)
		if err != nil {
			return err
		}
		slot, err := tx.FindTimeSlotByID(ctx, req.TimeSlotID)
		if err != nil {
			return err
		}
		b, err := s.rules.CreateBooking(exp, slot, req.UserID, req.GuestCount, req.Notes)
		if err != nil {
			return err
		}
		if err := slot.Reserve(b.GuestCount()); err != nil {
			return err
		}
		if err := tx.SaveTimeSlot(ctx, slot); err != nil {
			return err
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("booking created",
		"booking_id", booking.ID(), "time_slot_id", booking.TimeSlotID(), "guests", booking.GuestCount())
	s.invalidateSlots(ctx, booking.ExperienceID())
	s.publish(ctx, ports.EventBookingCreated, booking.ID(), map[string]any{
		"user_id":       booking.UserID(),
		"experience_id": booking.ExperienceID(),
		"time_slot_id":  booking.TimeSlotID(),
		"guest_count":   booking.GuestCount(),
		"total_price":   booking.TotalPrice().Amount().String(),
		"currency":      booking.TotalPrice().Currency(),
	})
	return booking, nil
}

// ConfirmBooking settles a booking, optionally attaching the payment
// reference that paid for it.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, paymentRef string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		b, err := tx.FindBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if paymentRef != "" {
			err = b.ConfirmWithPayment(paymentRef, s.now())
		} else {
			err = b.Confirm(s.now())
		}
		if err != nil {
			return err
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	s.publish(ctx, ports.EventBookingConfirmed, booking.ID(), map[string]any{
		"user_id":    booking.UserID(),
		"payment_id": booking.PaymentID(),
	})
	return booking, nil
}

// CancelBooking cancels on behalf of the guest or the host and returns the
// seats to the slot in the same transaction.
func (s *BookingService) CancelBooking(ctx context.Context, req CancelBookingRequest) (*CancelBookingResult, error) {
	var result CancelBookingResult
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		b, err := tx.FindBookingByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		exp, err := tx.FindExperienceByID(ctx, b.ExperienceID())
		if err != nil {
			return err
		}
		if err := s.rules.AuthorizeCancellation(b, exp, req.ActorID); err != nil {
			return err
		}
		check := s.rules.ValidateCancellation(b)
		if !check.CanCancel {
			return fmt.Errorf("%s: %w", check.Reason, &domain.TransitionError{
				Entity: "booking", From: string(b.Status()), To: string(domain.BookingCancelled),
			})
		}
		now := s.now()
		if _, err := releaseBookingHold(ctx, tx, b, func(b *domain.Booking) error {
			return b.Cancel(req.Reason, now)
		}); err != nil {
			return err
		}
		result = CancelBookingResult{Booking: b, RequiresRefund: check.RequiresRefund}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	b := result.Booking
	s.log.Info("booking cancelled", "booking_id", b.ID(), "requires_refund", result.RequiresRefund)
	s.invalidateSlots(ctx, b.ExperienceID())
	s.publish(ctx, ports.EventBookingCancelled, b.ID(), map[string]any{
		"user_id":         b.UserID(),
		"time_slot_id":    b.TimeSlotID(),
		"guest_count":     b.GuestCount(),
		"reason":          b.CancellationReason(),
		"requires_refund": result.RequiresRefund,
		"payment_id":      b.PaymentID(),
	})
	return &result, nil
}

// CompleteBooking marks a confirmed booking as attended. Only the host may.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		b, err := tx.FindBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		exp, err := tx.FindExperienceByID(ctx, b.ExperienceID())
		if err != nil {
			return err
		}
		if err := s.rules.AuthorizeCompletion(b, exp, actorID); err != nil {
			return err
		}
		if err := b.Complete(s.now()); err != nil {
			return err
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	s.publish(ctx, ports.EventBookingCompleted, booking.ID(), map[string]any{"user_id": booking.UserID()})
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return s.repo.FindBookingByID(ctx, bookingID)
}

// ListAvailableSlots serves the upcoming bookable slots of an experience
// from cache when possible. Concurrent misses share one repository read.
func (s *BookingService) ListAvailableSlots(ctx context.Context, experienceID uuid.UUID) ([]ports.SlotView, error) {
	if s.cache != nil {
		views, ok, err := s.cache.GetSlots(ctx, experienceID)
		if err != nil {
			s.log.Warn("slot cache read failed", "experience_id", experienceID, "err", err)
		} else if ok {
			return views, nil
		}
	}

	v, err, _ := s.group.Do(experienceID.String(), func() (interface{}, error) {
		// The read is shared with other callers, so one caller going away
		// must not fail it for the rest.
		ctx := context.WithoutCancel(ctx)
		slots, err := s.repo.ListTimeSlotsByExperience(ctx, experienceID, s.now())
		if err != nil {
			return nil, err
		}
		views := make([]ports.SlotView, 0, len(slots))
		for _, ts := range slots {
			if ts.IsAvailable() {
				views = append(views, SlotViewOf(ts))
			}
		}
		sort.Slice(views, func(i, j int) bool { return views[i].StartTime.Before(views[j].StartTime) })
		if s.cache != nil {
			if err := s.cache.SetSlots(ctx, experienceID, views); err != nil {
				s.log.Warn("slot cache write failed", "experience_id", experienceID, "err", err)
			}
		}
		return views, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return v.([]ports.SlotView), nil
}

func SlotViewOf(ts *domain.TimeSlot) ports.SlotView {
	return ports.SlotView{
		ID:             ts.ID(),
		ExperienceID:   ts.ExperienceID(),
		Date:           ts.Date(),
		StartTime:      ts.StartTime(),
		EndTime:        ts.EndTime(),
		Capacity:       ts.Capacity(),
		BookedCount:    ts.BookedCount(),
		AvailableSpots: ts.AvailableSpots(),
		IsAvailable:    ts.IsAvailable(),
		Version:        ts.Version(),
	}
}
