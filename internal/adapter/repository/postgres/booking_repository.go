package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

const bookingColumns = `id, user_id, experience_id, time_slot_id, guest_count, total_price, currency, status,
	payment_id, notes, cancellation_reason, confirmed_at, cancelled_at, completed_at, version, created_at, updated_at`

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		a                                   domain.BookingAttrs
		total                               decimal.Decimal
		currency                            string
		confirmedAt, cancelledAt, completed sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.ExperienceID, &a.TimeSlotID, &a.GuestCount, &total, &currency,
		&a.Status, &a.PaymentID, &a.Notes, &a.CancellationReason, &confirmedAt, &cancelledAt, &completed,
		&a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	money, err := domain.NewMoney(total, currency)
	if err != nil {
		return nil, err
	}
	a.TotalPrice = money
	a.ConfirmedAt = timePtr(confirmedAt)
	a.CancelledAt = timePtr(cancelledAt)
	a.CompletedAt = timePtr(completed)
	return domain.RestoreBooking(a)
}

func (s *Store) FindBookingByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

// FindBookingsByStatus returns the oldest matching bookings after the cursor first.
func (s *Store) FindBookingsByStatus(ctx context.Context, statuses []domain.BookingStatus, createdBefore time.Time, after ports.Cursor, limit int) ([]*domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE status = ANY($1) AND created_at < $2 AND (created_at, id) > ($3, $4)
	ORDER BY created_at, id
	LIMIT $5
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, statusArray(statuses), createdBefore,
		after.CreatedAt, after.ID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("find bookings by status: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *Store) SaveBooking(ctx context.Context, b *domain.Booking) error {
	now := s.now()
	if b.IsNew() {
		b.AssignIdentity(uuid.New(), now)
		a := b.Attrs()
		query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		`
		if _, err := s.conn(ctx).ExecContext(ctx, query, a.ID, a.UserID, a.ExperienceID, a.TimeSlotID, a.GuestCount,
			a.TotalPrice.Amount(), a.TotalPrice.Currency(), a.Status, a.PaymentID, a.Notes, a.CancellationReason,
			a.ConfirmedAt, a.CancelledAt, a.CompletedAt, a.Version, now); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		b.MarkPersisted(now)
		return nil
	}

	a := b.Attrs()
	query := `
	UPDATE bookings
	SET status = $1, payment_id = $2, cancellation_reason = $3,
		confirmed_at = $4, cancelled_at = $5, completed_at = $6,
		version = $7, updated_at = $8
	WHERE id = $9 AND version = $10
	`
	if err := s.execVersioned(ctx, "booking", a.ID, b.PersistedVersion(), query,
		a.Status, a.PaymentID, a.CancellationReason, a.ConfirmedAt, a.CancelledAt, a.CompletedAt,
		a.Version, now, a.ID, b.PersistedVersion()); err != nil {
		return err
	}
	b.MarkPersisted(now)
	return nil
}
