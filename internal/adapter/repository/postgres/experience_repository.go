package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
)

const experienceColumns = `id, host_id, title, description, duration_minutes, max_capacity, price, currency,
	is_active, rating, review_count, version, created_at, updated_at`

func scanExperience(row scanner) (*domain.Experience, error) {
	var (
		a        domain.ExperienceAttrs
		price    decimal.Decimal
		currency string
	)
	if err := row.Scan(&a.ID, &a.HostID, &a.Title, &a.Description, &a.DurationMinutes, &a.MaxCapacity,
		&price, &currency, &a.IsActive, &a.Rating, &a.ReviewCount, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	money, err := domain.NewMoney(price, currency)
	if err != nil {
		return nil, err
	}
	a.Price = money
	return domain.RestoreExperience(a)
}

func (s *Store) FindExperienceByID(ctx context.Context, id uuid.UUID) (*domain.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`
	e, err := scanExperience(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "experience", id)
	}
	return e, nil
}

func (s *Store) SaveExperience(ctx context.Context, e *domain.Experience) error {
	now := s.now()
	if e.IsNew() {
		e.AssignIdentity(uuid.New(), now)
		a := e.Attrs()
		query := `
		INSERT INTO experiences (` + experienceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		`
		if _, err := s.conn(ctx).ExecContext(ctx, query, a.ID, a.HostID, a.Title, a.Description,
			a.DurationMinutes, a.MaxCapacity, a.Price.Amount(), a.Price.Currency(),
			a.IsActive, a.Rating, a.ReviewCount, a.Version, now); err != nil {
			return fmt.Errorf("insert experience: %w", err)
		}
		e.MarkPersisted(now)
		return nil
	}

	a := e.Attrs()
	query := `
	UPDATE experiences
	SET title = $1, description = $2, duration_minutes = $3, max_capacity = $4, price = $5, currency = $6,
		is_active = $7, rating = $8, review_count = $9, version = $10, updated_at = $11
	WHERE id = $12 AND version = $13
	`
	if err := s.execVersioned(ctx, "experience", a.ID, e.PersistedVersion(), query,
		a.Title, a.Description, a.DurationMinutes, a.MaxCapacity, a.Price.Amount(), a.Price.Currency(),
		a.IsActive, a.Rating, a.ReviewCount, a.Version, now, a.ID, e.PersistedVersion()); err != nil {
		return err
	}
	e.MarkPersisted(now)
	return nil
}

const timeSlotColumns = `id, experience_id, date, start_time, end_time, capacity, booked_count, is_available,
	version, created_at, updated_at`

func scanTimeSlot(row scanner) (*domain.TimeSlot, error) {
	var a domain.TimeSlotAttrs
	if err := row.Scan(&a.ID, &a.ExperienceID, &a.Date, &a.StartTime, &a.EndTime, &a.Capacity,
		&a.BookedCount, &a.IsAvailable, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return domain.RestoreTimeSlot(a)
}

func (s *Store) FindTimeSlotByID(ctx context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1`
	ts, err := scanTimeSlot(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "time_slot", id)
	}
	return ts, nil
}

func (s *Store) ListTimeSlotsByExperience(ctx context.Context, experienceID uuid.UUID, from time.Time) ([]*domain.TimeSlot, error) {
	query := `
	SELECT ` + timeSlotColumns + `
	FROM time_slots
	WHERE experience_id = $1 AND start_time >= $2
	ORDER BY start_time
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, experienceID, from)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	defer rows.Close()

	var slots []*domain.TimeSlot
	for rows.Next() {
		ts, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, ts)
	}
	return slots, rows.Err()
}

// SaveTimeSlot writes the full capacity state. Two writers that loaded the
// same version cannot both succeed, which is what prevents overbooking.
func (s *Store) SaveTimeSlot(ctx context.Context, ts *domain.TimeSlot) error {
	now := s.now()
	if ts.IsNew() {
		ts.AssignIdentity(uuid.New(), now)
		a := ts.Attrs()
		query := `
		INSERT INTO time_slots (` + timeSlotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		`
		if _, err := s.conn(ctx).ExecContext(ctx, query, a.ID, a.ExperienceID, a.Date, a.StartTime, a.EndTime,
			a.Capacity, a.BookedCount, a.IsAvailable, a.Version, now); err != nil {
			return fmt.Errorf("insert time slot: %w", err)
		}
		ts.MarkPersisted(now)
		return nil
	}

	a := ts.Attrs()
	query := `
	UPDATE time_slots
	SET capacity = $1, booked_count = $2, is_available = $3, version = $4, updated_at = $5
	WHERE id = $6 AND version = $7
	`
	if err := s.execVersioned(ctx, "time_slot", a.ID, ts.PersistedVersion(), query,
		a.Capacity, a.BookedCount, a.IsAvailable, a.Version, now, a.ID, ts.PersistedVersion()); err != nil {
		return err
	}
	ts.MarkPersisted(now)
	return nil
}
