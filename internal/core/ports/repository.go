package ports

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
)

// Cursor is a position in (created_at, id) order. Status queries return rows
// strictly after it; the zero Cursor starts from the beginning.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// CursorAt returns the position just past an aggregate.
func CursorAt(createdAt time.Time, id uuid.UUID) Cursor {
	return Cursor{CreatedAt: createdAt, ID: id}
}

func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == uuid.Nil
}

// Precedes reports whether a row at (createdAt, id) lies after c.
func (c Cursor) Precedes(createdAt time.Time, id uuid.UUID) bool {
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.After(c.CreatedAt)
	}
	return bytes.Compare(id[:], c.ID[:]) > 0
}

// Repository is the persistence boundary of the reservation core.
//
// Save* on an aggregate without identity inserts it with version 1. On an
// existing aggregate it performs a conditional write predicated on the
// version the aggregate was loaded at, storing its current version; when no
// record matches the predicate it returns a *domain.ConflictError.
type Repository interface {
	FindExperienceByID(ctx context.Context, id uuid.UUID) (*domain.Experience, error)
	SaveExperience(ctx context.Context, e *domain.Experience) error

	FindTimeSlotByID(ctx context.Context, id uuid.UUID) (*domain.TimeSlot, error)
	ListTimeSlotsByExperience(ctx context.Context, experienceID uuid.UUID, from time.Time) ([]*domain.TimeSlot, error)
	SaveTimeSlot(ctx context.Context, ts *domain.TimeSlot) error

	FindProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	SaveProduct(ctx context.Context, p *domain.Product) error

	FindBookingByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindBookingsByStatus(ctx context.Context, statuses []domain.BookingStatus, createdBefore time.Time, after Cursor, limit int) ([]*domain.Booking, error)
	SaveBooking(ctx context.Context, b *domain.Booking) error

	FindOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus, createdBefore time.Time, after Cursor, limit int) ([]*domain.Order, error)
	SaveOrder(ctx context.Context, o *domain.Order) error

	// WithTransaction runs fn inside one atomic unit of work, committing
	// when fn returns nil and rolling back otherwise. The repository passed
	// to fn, and ctx, are bound to that unit; calling WithTransaction on
	// either while it is open reuses it instead of opening another.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
}
