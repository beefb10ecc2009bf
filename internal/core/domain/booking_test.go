package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
)

var now = time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC)

func newExperience(t *testing.T, maxCapacity int) *domain.Experience {
	t.Helper()
	price, err := domain.MoneyFromInt(500, "MXN")
	require.NoError(t, err)
	exp, err := domain.NewExperience(domain.NewExperienceParams{
		HostID:          uuid.New(),
		Title:           "Guelaguetza dance rehearsal",
		Description:     "Watch the delegations rehearse on Cerro del Fortin",
		DurationMinutes: 120,
		MaxCapacity:     maxCapacity,
		Price:           price,
	})
	require.NoError(t, err)
	exp.AssignIdentity(uuid.New(), now)
	return exp
}

func newSlot(t *testing.T, exp *domain.Experience, capacity int) *domain.TimeSlot {
	t.Helper()
	start := now.Add(48 * time.Hour)
	ts, err := domain.NewTimeSlot(exp.ID(), start.Truncate(24*time.Hour), start, start.Add(2*time.Hour), capacity)
	require.NoError(t, err)
	ts.AssignIdentity(uuid.New(), now)
	return ts
}

func TestTimeSlot_ReserveRelease(t *testing.T) {
	exp := newExperience(t, 10)
	ts := newSlot(t, exp, 10)
	require.Equal(t, 1, ts.Version())

	require.NoError(t, ts.Reserve(6))
	assert.Equal(t, 6, ts.BookedCount())
	assert.Equal(t, 4, ts.AvailableSpots())
	assert.True(t, ts.IsAvailable())
	assert.Equal(t, 2, ts.Version())

	err := ts.Reserve(6)
	var capErr *domain.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 4, capErr.Available)
	assert.Equal(t, 6, capErr.Requested)
	assert.Equal(t, 6, ts.BookedCount(), "a failed reserve changes nothing")
	assert.Equal(t, 2, ts.Version())

	require.NoError(t, ts.Reserve(4))
	assert.False(t, ts.IsAvailable())
	assert.False(t, ts.CanAccommodate(1))

	require.NoError(t, ts.Release(3))
	assert.True(t, ts.IsAvailable())
	assert.Equal(t, 7, ts.BookedCount())
	assert.Equal(t, 4, ts.Version())

	assert.ErrorIs(t, ts.Release(8), domain.ErrValidation)
	assert.ErrorIs(t, ts.Reserve(0), domain.ErrValidation)
	assert.Equal(t, 4, ts.Version())
}

func TestRestoreTimeSlot_RejectsBrokenInvariants(t *testing.T) {
	base := domain.TimeSlotAttrs{
		ID:           uuid.New(),
		ExperienceID: uuid.New(),
		StartTime:    now,
		EndTime:      now.Add(time.Hour),
		Capacity:     5,
		BookedCount:  2,
		IsAvailable:  true,
		Version:      3,
	}
	_, err := domain.RestoreTimeSlot(base)
	require.NoError(t, err)

	over := base
	over.BookedCount = 6
	over.IsAvailable = false
	_, err = domain.RestoreTimeSlot(over)
	assert.ErrorIs(t, err, domain.ErrValidation)

	flag := base
	flag.IsAvailable = false
	_, err = domain.RestoreTimeSlot(flag)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingDomainService_CreateBooking(t *testing.T) {
	rules := domain.NewBookingDomainService()
	exp := newExperience(t, 10)
	ts := newSlot(t, exp, 10)

	b, err := rules.CreateBooking(exp, ts, uuid.New(), 4, "  anniversary ")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingPayment, b.Status())
	assert.Equal(t, "2000.00 MXN", b.TotalPrice().String())
	assert.Equal(t, "anniversary", b.Notes())
	assert.Equal(t, 0, ts.BookedCount(), "the domain service never reserves")

	require.NoError(t, ts.Reserve(8))
	_, err = rules.CreateBooking(exp, ts, uuid.New(), 3, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientCapacity)

	_, err = rules.CreateBooking(exp, newSlot(t, newExperience(t, 10), 10), uuid.New(), 1, "")
	assert.ErrorIs(t, err, domain.ErrSlotMismatch)

	exp.Deactivate()
	_, err = rules.CreateBooking(exp, ts, uuid.New(), 1, "")
	assert.ErrorIs(t, err, domain.ErrInactiveExperience)
}

func TestBookingDomainService_Cancellation(t *testing.T) {
	rules := domain.NewBookingDomainService()
	exp := newExperience(t, 10)
	ts := newSlot(t, exp, 10)
	guest := uuid.New()
	b, err := rules.CreateBooking(exp, ts, guest, 2, "")
	require.NoError(t, err)

	assert.NoError(t, rules.AuthorizeCancellation(b, exp, guest))
	assert.NoError(t, rules.AuthorizeCancellation(b, exp, exp.HostID()))
	assert.ErrorIs(t, rules.AuthorizeCancellation(b, exp, uuid.New()), domain.ErrForbidden)
	assert.ErrorIs(t, rules.AuthorizeCompletion(b, exp, guest), domain.ErrForbidden)

	check := rules.ValidateCancellation(b)
	assert.True(t, check.CanCancel)
	assert.False(t, check.RequiresRefund)

	require.NoError(t, b.ConfirmWithPayment("chrg_1", now))
	check = rules.ValidateCancellation(b)
	assert.True(t, check.CanCancel)
	assert.True(t, check.RequiresRefund)

	require.NoError(t, b.Complete(now))
	check = rules.ValidateCancellation(b)
	assert.False(t, check.CanCancel)
	assert.NotEmpty(t, check.Reason)
}

func TestBooking_StateMachine(t *testing.T) {
	rules := domain.NewBookingDomainService()
	exp := newExperience(t, 10)

	t.Run("pending payment to confirmed to completed", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		require.NoError(t, b.Confirm(now))
		assert.NotNil(t, b.ConfirmedAt())
		require.NoError(t, b.Complete(now))
		assert.Equal(t, domain.BookingCompleted, b.Status())
		assert.True(t, b.Status().IsTerminal())
		assert.ErrorIs(t, b.Cancel("late", now), domain.ErrInvalidStateTransition)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		require.NoError(t, b.Cancel("  plans changed ", now))
		assert.Equal(t, "plans changed", b.CancellationReason())
		assert.False(t, b.HoldsCapacity())
		assert.ErrorIs(t, b.Confirm(now), domain.ErrInvalidStateTransition)
		_, err = b.SettlePayment("chrg_2", domain.BookingCancelled, now)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("payment failed can only expire", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		require.NoError(t, b.MarkPaymentFailed())
		assert.False(t, b.CanBeCancelled())
		assert.ErrorIs(t, b.Confirm(now), domain.ErrInvalidStateTransition)

		v := b.Version()
		require.NoError(t, b.Expire(now))
		assert.Equal(t, domain.BookingCancelled, b.Status())
		assert.Equal(t, domain.ExpiryReason, b.CancellationReason())
		assert.Equal(t, v+1, b.Version())
	})

	t.Run("confirmed cannot expire", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		require.NoError(t, b.Confirm(now))
		assert.ErrorIs(t, b.Expire(now), domain.ErrInvalidStateTransition)
	})

	t.Run("confirm with payment is one mutation", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		v := b.Version()
		require.NoError(t, b.ConfirmWithPayment(" chrg_4 ", now))
		assert.Equal(t, v+1, b.Version())
		assert.Equal(t, "chrg_4", b.PaymentID())
		assert.Equal(t, domain.BookingConfirmed, b.Status())
		assert.NotNil(t, b.ConfirmedAt())
		assert.ErrorIs(t, b.ConfirmWithPayment("chrg_4", now), domain.ErrInvalidStateTransition)
		assert.Equal(t, v+1, b.Version())
	})

	t.Run("settle payment", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		v := b.Version()

		changed, err := b.SettlePayment("chrg_5", domain.BookingPending, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, v+1, b.Version())

		changed, err = b.SettlePayment("chrg_5", domain.BookingPending, now)
		require.NoError(t, err)
		assert.False(t, changed, "same reference and status")
		assert.Equal(t, v+1, b.Version())

		_, err = b.SettlePayment("chrg_5", domain.BookingCancelled, now)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "cancelling goes through Cancel")
		_, err = b.SettlePayment("chrg_5", domain.BookingPaymentFailed, now)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		_, err = b.SettlePayment(" ", domain.BookingConfirmed, now)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, v+1, b.Version())

		changed, err = b.SettlePayment("chrg_5", domain.BookingConfirmed, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, v+2, b.Version())

		_, err = b.SettlePayment("chrg_6", domain.BookingConfirmed, now)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "a second payment is never recorded")
		assert.Equal(t, "chrg_5", b.PaymentID())
	})

	t.Run("settle payment on a failed booking", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		_, err = b.SettlePayment("chrg_7", domain.BookingPaymentFailed, now)
		require.NoError(t, err)
		v := b.Version()

		_, err = b.SettlePayment("chrg_8", domain.BookingConfirmed, now)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		assert.Equal(t, domain.BookingPaymentFailed, b.Status())
		assert.Equal(t, "chrg_7", b.PaymentID())
		assert.Equal(t, v, b.Version())
	})

	t.Run("recording a reference is idempotent", func(t *testing.T) {
		b, err := rules.CreateBooking(exp, newSlot(t, exp, 10), uuid.New(), 1, "")
		require.NoError(t, err)
		changed, err := b.SettlePayment("chrg_3", domain.BookingPendingPayment, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.BookingPendingPayment, b.Status())
		v := b.Version()

		changed, err = b.SettlePayment(" chrg_3 ", domain.BookingPendingPayment, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, v, b.Version())
	})
}
