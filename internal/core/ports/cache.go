package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotView is the read model of a time slot served to browsing clients. It
// may be stale and is never used to decide a reservation.
type SlotView struct {
	ID             uuid.UUID `json:"id"`
	ExperienceID   uuid.UUID `json:"experience_id"`
	Date           time.Time `json:"date"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Capacity       int       `json:"capacity"`
	BookedCount    int       `json:"booked_count"`
	AvailableSpots int       `json:"available_spots"`
	IsAvailable    bool      `json:"is_available"`
	Version        int       `json:"version"`
}

type SlotCache interface {
	GetSlots(ctx context.Context, experienceID uuid.UUID) ([]SlotView, bool, error)
	SetSlots(ctx context.Context, experienceID uuid.UUID, slots []SlotView) error
	Invalidate(ctx context.Context, experienceID uuid.UUID) error
}

// Locker grants a time-bounded exclusive lease on a named job.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
