package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

func (s *Store) FindExperienceByID(ctx context.Context, id uuid.UUID) (*domain.Experience, error) {
	return s.session(ctx).FindExperienceByID(ctx, id)
}

func (s *Store) SaveExperience(ctx context.Context, e *domain.Experience) error {
	return s.session(ctx).SaveExperience(ctx, e)
}

func (s *Store) FindTimeSlotByID(ctx context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	return s.session(ctx).FindTimeSlotByID(ctx, id)
}

func (s *Store) ListTimeSlotsByExperience(ctx context.Context, experienceID uuid.UUID, from time.Time) ([]*domain.TimeSlot, error) {
	return s.session(ctx).ListTimeSlotsByExperience(ctx, experienceID, from)
}

func (s *Store) SaveTimeSlot(ctx context.Context, ts *domain.TimeSlot) error {
	return s.session(ctx).SaveTimeSlot(ctx, ts)
}

func (s *Store) FindProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.session(ctx).FindProductByID(ctx, id)
}

func (s *Store) SaveProduct(ctx context.Context, p *domain.Product) error {
	return s.session(ctx).SaveProduct(ctx, p)
}

func (s *Store) FindBookingByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.session(ctx).FindBookingByID(ctx, id)
}

func (s *Store) FindBookingsByStatus(ctx context.Context, statuses []domain.BookingStatus, createdBefore time.Time, after ports.Cursor, limit int) ([]*domain.Booking, error) {
	return s.session(ctx).FindBookingsByStatus(ctx, statuses, createdBefore, after, limit)
}

func (s *Store) SaveBooking(ctx context.Context, b *domain.Booking) error {
	return s.session(ctx).SaveBooking(ctx, b)
}

func (s *Store) FindOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.session(ctx).FindOrderByID(ctx, id)
}

func (s *Store) FindOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus, createdBefore time.Time, after ports.Cursor, limit int) ([]*domain.Order, error) {
	return s.session(ctx).FindOrdersByStatus(ctx, statuses, createdBefore, after, limit)
}

func (s *Store) SaveOrder(ctx context.Context, o *domain.Order) error {
	return s.session(ctx).SaveOrder(ctx, o)
}

var _ ports.Repository = (*session)(nil)

func (r *session) FindExperienceByID(_ context.Context, id uuid.UUID) (*domain.Experience, error) {
	rw, ok := r.get(key{kind: kindExperience, id: id})
	if !ok {
		return nil, domain.NewNotFound(kindExperience, id)
	}
	return restoreExperience(rw)
}

func (r *session) SaveExperience(_ context.Context, e *domain.Experience) error {
	return r.put(kindExperience, e, func() any { return e.Attrs() })
}

func (r *session) FindTimeSlotByID(_ context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	rw, ok := r.get(key{kind: kindTimeSlot, id: id})
	if !ok {
		return nil, domain.NewNotFound(kindTimeSlot, id)
	}
	return restoreTimeSlot(rw)
}

func (r *session) ListTimeSlotsByExperience(_ context.Context, experienceID uuid.UUID, from time.Time) ([]*domain.TimeSlot, error) {
	var out []*domain.TimeSlot
	for _, rw := range r.scan(kindTimeSlot) {
		a := rw.attrs.(domain.TimeSlotAttrs)
		if a.ExperienceID != experienceID || a.StartTime.Before(from) {
			continue
		}
		ts, err := restoreTimeSlot(rw.row)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, nil
}

func (r *session) SaveTimeSlot(_ context.Context, ts *domain.TimeSlot) error {
	return r.put(kindTimeSlot, ts, func() any { return ts.Attrs() })
}

func (r *session) FindProductByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	rw, ok := r.get(key{kind: kindProduct, id: id})
	if !ok {
		return nil, domain.NewNotFound(kindProduct, id)
	}
	return restoreProduct(rw)
}

func (r *session) SaveProduct(_ context.Context, p *domain.Product) error {
	return r.put(kindProduct, p, func() any { return p.Attrs() })
}

func (r *session) FindBookingByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	rw, ok := r.get(key{kind: kindBooking, id: id})
	if !ok {
		return nil, domain.NewNotFound(kindBooking, id)
	}
	return restoreBooking(rw)
}

func (r *session) FindBookingsByStatus(_ context.Context, statuses []domain.BookingStatus, createdBefore time.Time, after ports.Cursor, limit int) ([]*domain.Booking, error) {
	want := make(map[domain.BookingStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []*domain.Booking
	for _, rw := range r.scan(kindBooking) {
		a := rw.attrs.(domain.BookingAttrs)
		if !want[a.Status] || !rw.createdAt.Before(createdBefore) || !after.Precedes(rw.createdAt, rw.id) {
			continue
		}
		b, err := restoreBooking(rw.row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out[:limitOf(len(out), limit)], nil
}

func (r *session) SaveBooking(_ context.Context, b *domain.Booking) error {
	return r.put(kindBooking, b, func() any { return b.Attrs() })
}

func (r *session) FindOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	rw, ok := r.get(key{kind: kindOrder, id: id})
	if !ok {
		return nil, domain.NewNotFound(kindOrder, id)
	}
	return restoreOrder(rw)
}

func (r *session) FindOrdersByStatus(_ context.Context, statuses []domain.OrderStatus, createdBefore time.Time, after ports.Cursor, limit int) ([]*domain.Order, error) {
	want := make(map[domain.OrderStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []*domain.Order
	for _, rw := range r.scan(kindOrder) {
		a := rw.attrs.(domain.OrderAttrs)
		if !want[a.Status] || !rw.createdAt.Before(createdBefore) || !after.Precedes(rw.createdAt, rw.id) {
			continue
		}
		o, err := restoreOrder(rw.row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out[:limitOf(len(out), limit)], nil
}

func (r *session) SaveOrder(_ context.Context, o *domain.Order) error {
	return r.put(kindOrder, o, func() any { return o.Attrs() })
}

// The stored row is authoritative for version and timestamps.

func restoreExperience(rw row) (*domain.Experience, error) {
	a := rw.attrs.(domain.ExperienceAttrs)
	a.Version, a.CreatedAt, a.UpdatedAt = rw.version, rw.createdAt, rw.updatedAt
	return domain.RestoreExperience(a)
}

func restoreTimeSlot(rw row) (*domain.TimeSlot, error) {
	a := rw.attrs.(domain.TimeSlotAttrs)
	a.Version, a.CreatedAt, a.UpdatedAt = rw.version, rw.createdAt, rw.updatedAt
	return domain.RestoreTimeSlot(a)
}

func restoreProduct(rw row) (*domain.Product, error) {
	a := rw.attrs.(domain.ProductAttrs)
	a.Version, a.CreatedAt, a.UpdatedAt = rw.version, rw.createdAt, rw.updatedAt
	return domain.RestoreProduct(a)
}

func restoreBooking(rw row) (*domain.Booking, error) {
	a := rw.attrs.(domain.BookingAttrs)
	a.Version, a.CreatedAt, a.UpdatedAt = rw.version, rw.createdAt, rw.updatedAt
	return domain.RestoreBooking(a)
}

func restoreOrder(rw row) (*domain.Order, error) {
	a := rw.attrs.(domain.OrderAttrs)
	a.Version, a.CreatedAt, a.UpdatedAt = rw.version, rw.createdAt, rw.updatedAt
	a.Items = append([]domain.OrderItem(nil), a.Items...)
	return domain.RestoreOrder(a)
}
