package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

const (
	DefaultCleanupTimeoutMinutes = 30
	DefaultCleanupInterval       = 15 * time.Minute

	cleanupLockName   = "reconciliation"
	cleanupBatchSize  = 100
	cleanupMaxBatches = 50
)

// ItemError records one reservation the job could not reclaim.
type ItemError struct {
	Aggregate string    `json:"aggregate"`
	ID        uuid.UUID `json:"id"`
	Err       string    `json:"error"`
}

// BatchResult is the outcome of reclaiming one aggregate type.
type BatchResult struct {
	Cleaned int
	Errors  []ItemError
}

// CleanupReport is returned by RunCleanupJob. Success is false only when the
// job itself could not run, not when individual items failed.
type CleanupReport struct {
	BookingsCleaned int         `json:"bookings_cleaned"`
	OrdersCleaned   int         `json:"orders_cleaned"`
	TotalCleaned    int         `json:"total_cleaned"`
	DurationMs      int64       `json:"duration_ms"`
	Success         bool        `json:"success"`
	Skipped         bool        `json:"skipped,omitempty"`
	Error           string      `json:"error,omitempty"`
	Errors          []ItemError `json:"errors,omitempty"`
}

// ReconciliationService reclaims capacity held by reservations whose payment
// never completed. It is the only timeout mechanism for abandoned holds.
type ReconciliationService struct {
	base
	locker  ports.Locker
	lockTTL time.Duration
}

func NewReconciliationService(repo ports.Repository, locker ports.Locker, lockTTL time.Duration, opts ...Option) *ReconciliationService {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &ReconciliationService{base: newBase(repo, opts), locker: locker, lockTTL: lockTTL}
}

// RunCleanupJob reclaims bookings and orders stuck awaiting payment for
// longer than timeoutMinutes. It never panics out of a scheduler and never
// returns an error; failures are reported in the result.
func (s *ReconciliationService) RunCleanupJob(ctx context.Context, timeoutMinutes int) (report CleanupReport) {
	start := time.Now()
	report.Success = true
	defer func() {
		report.DurationMs = time.Since(start).Milliseconds()
	}()

	if timeoutMinutes <= 0 {
		timeoutMinutes = DefaultCleanupTimeoutMinutes
	}
	timeout := time.Duration(timeoutMinutes) * time.Minute

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, cleanupLockName, s.lockTTL)
		if err != nil {
			s.log.Error("cleanup lock failed", "err", err)
			report.Success = false
			report.Error = err.Error()
			return report
		}
		if !ok {
			s.log.Info("cleanup skipped, another runner holds the lock")
			report.Skipped = true
			return report
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("cleanup lock release failed", "err", err)
			}
		}()
	}

	var jobErrs []error
	bookings, err := s.CleanupStaleBookings(ctx, timeout)
	if err != nil {
		jobErrs = append(jobErrs, err)
	}
	orders, err := s.CleanupStaleOrders(ctx, timeout)
	if err != nil {
		jobErrs = append(jobErrs, err)
	}

	report.BookingsCleaned = bookings.Cleaned
	report.OrdersCleaned = orders.Cleaned
	report.TotalCleaned = bookings.Cleaned + orders.Cleaned
	report.Errors = append(bookings.Errors, orders.Errors...)
	if len(jobErrs) > 0 {
		report.Success = false
		report.Error = errors.Join(jobErrs...).Error()
	}

	s.log.Info("cleanup finished",
		"bookings_cleaned", report.BookingsCleaned,
		"orders_cleaned", report.OrdersCleaned,
		"item_errors", len(report.Errors),
		"success", report.Success)
	return report
}

// CleanupStaleBookings cancels every booking awaiting payment since before
// now-timeout and returns its seats. The returned error is set only when the
// scan itself fails.
func (s *ReconciliationService) CleanupStaleBookings(ctx context.Context, timeout time.Duration) (BatchResult, error) {
	var result BatchResult
	cutoff := s.now().Add(-timeout)
	var cursor ports.Cursor

	// Pages advance past every row they return, so an item that keeps
	// failing is reported once and never blocks the rows behind it.
	for batch := 0; batch < cleanupMaxBatches; batch++ {
		stale, err := s.repo.FindBookingsByStatus(ctx, domain.StaleBookingStatuses(), cutoff, cursor, cleanupBatchSize)
		if err != nil {
			return result, fmt.Errorf("find stale bookings: %w", err)
		}
		for _, b := range stale {
			cursor = ports.CursorAt(b.CreatedAt(), b.ID())
			ok, err := s.expireBooking(ctx, b.ID(), cutoff)
			if err != nil {
				s.log.Error("booking cleanup failed", "booking_id", b.ID(), "err", err)
				result.Errors = append(result.Errors, ItemError{Aggregate: "booking", ID: b.ID(), Err: err.Error()})
				continue
			}
			if ok {
				result.Cleaned++
			}
		}
		if len(stale) < cleanupBatchSize {
			break
		}
	}
	return result, nil
}

func (s *ReconciliationService) expireBooking(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	var (
		expired *domain.Booking
		slot    *domain.TimeSlot
	)
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		expired, slot = nil, nil
		b, err := tx.FindBookingByID(ctx, id)
		if err != nil {
			return err
		}
		// The scan ran outside this transaction; recheck before mutating.
		if !b.Status().AwaitsPayment() || !b.CreatedAt().Before(cutoff) {
			return nil
		}
		now := s.now()
		ts, err := releaseBookingHold(ctx, tx, b, func(b *domain.Booking) error {
			return b.Expire(now)
		})
		if err != nil {
			return err
		}
		expired, slot = b, ts
		return nil
	})
	if err != nil || expired == nil {
		return false, err
	}

	s.log.Info("booking expired", "booking_id", expired.ID(), "time_slot_id", slot.ID(),
		"released", expired.GuestCount(), "booked_count", slot.BookedCount())
	s.invalidateSlots(ctx, expired.ExperienceID())
	s.publish(ctx, ports.EventReservationExpired, expired.ID(), map[string]any{
		"aggregate":    "booking",
		"user_id":      expired.UserID(),
		"time_slot_id": slot.ID(),
		"released":     expired.GuestCount(),
	})
	return true, nil
}

// CleanupStaleOrders is CleanupStaleBookings for orders and product stock.
func (s *ReconciliationService) CleanupStaleOrders(ctx context.Context, timeout time.Duration) (BatchResult, error) {
	var result BatchResult
	cutoff := s.now().Add(-timeout)
	var cursor ports.Cursor

	for batch := 0; batch < cleanupMaxBatches; batch++ {
		stale, err := s.repo.FindOrdersByStatus(ctx, domain.StaleOrderStatuses(), cutoff, cursor, cleanupBatchSize)
		if err != nil {
			return result, fmt.Errorf("find stale orders: %w", err)
		}
		for _, o := range stale {
			cursor = ports.CursorAt(o.CreatedAt(), o.ID())
			ok, err := s.expireOrder(ctx, o.ID(), cutoff)
			if err != nil {
				s.log.Error("order cleanup failed", "order_id", o.ID(), "err", err)
				result.Errors = append(result.Errors, ItemError{Aggregate: "order", ID: o.ID(), Err: err.Error()})
				continue
			}
			if ok {
				result.Cleaned++
			}
		}
		if len(stale) < cleanupBatchSize {
			break
		}
	}
	return result, nil
}

func (s *ReconciliationService) expireOrder(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	var expired *domain.Order
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		expired = nil
		o, err := tx.FindOrderByID(ctx, id)
		if err != nil {
			return err
		}
		if !o.Status().AwaitsPayment() || !o.CreatedAt().Before(cutoff) {
			return nil
		}
		now := s.now()
		if err := releaseOrderHold(ctx, tx, o, func(o *domain.Order) error {
			return o.Expire(now)
		}); err != nil {
			return err
		}
		expired = o
		return nil
	})
	if err != nil || expired == nil {
		return false, err
	}

	s.log.Info("order expired", "order_id", expired.ID(), "items", len(expired.Items()))
	s.publish(ctx, ports.EventReservationExpired, expired.ID(), map[string]any{
		"aggregate": "order",
		"user_id":   expired.UserID(),
	})
	return true, nil
}

// RunBackgroundCleanup runs the job once immediately and then on every tick
// until ctx is cancelled.
func (s *ReconciliationService) RunBackgroundCleanup(ctx context.Context, interval time.Duration, timeoutMinutes int) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("background cleanup started", "interval", interval, "timeout_minutes", timeoutMinutes)
	s.RunCleanupJob(ctx, timeoutMinutes)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("background cleanup stopped")
			return
		case <-ticker.C:
			s.RunCleanupJob(ctx, timeoutMinutes)
		}
	}
}
