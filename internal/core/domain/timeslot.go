package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a capacity holder: a dated session of an experience with a
// fixed number of seats.
type TimeSlot struct {
	aggregate

	experienceID uuid.UUID
	date         time.Time
	startTime    time.Time
	endTime      time.Time
	capacity     int
	bookedCount  int
	isAvailable  bool
}

// TimeSlotAttrs is the flat persisted form of a TimeSlot.
type TimeSlotAttrs struct {
	ID           uuid.UUID
	ExperienceID uuid.UUID
	Date         time.Time
	StartTime    time.Time
	EndTime      time.Time
	Capacity     int
	BookedCount  int
	IsAvailable  bool
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewTimeSlot(experienceID uuid.UUID, date, start, end time.Time, capacity int) (*TimeSlot, error) {
	ts := &TimeSlot{
		aggregate:    newAggregate(),
		experienceID: experienceID,
		date:         date,
		startTime:    start,
		endTime:      end,
		capacity:     capacity,
		isAvailable:  capacity > 0,
	}
	if err := ts.validate(); err != nil {
		return nil, err
	}
	return ts, nil
}

// RestoreTimeSlot rebuilds a stored time slot, rejecting records whose
// invariants do not hold.
func RestoreTimeSlot(a TimeSlotAttrs) (*TimeSlot, error) {
	if err := checkRestoredVersion("time slot", a.ID, a.Version); err != nil {
		return nil, err
	}
	ts := &TimeSlot{
		aggregate:    restoredAggregate(a.ID, a.Version, a.CreatedAt, a.UpdatedAt),
		experienceID: a.ExperienceID,
		date:         a.Date,
		startTime:    a.StartTime,
		endTime:      a.EndTime,
		capacity:     a.Capacity,
		bookedCount:  a.BookedCount,
		isAvailable:  a.IsAvailable,
	}
	if err := ts.validate(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (t *TimeSlot) validate() error {
	if t.experienceID == uuid.Nil {
		return validationf("time slot requires an experience")
	}
	if !t.endTime.After(t.startTime) {
		return validationf("time slot end time must be after start time")
	}
	if t.capacity < 1 {
		return validationf("time slot capacity must be at least 1, got %d", t.capacity)
	}
	if t.bookedCount < 0 {
		return validationf("booked count cannot be negative, got %d", t.bookedCount)
	}
	if t.bookedCount > t.capacity {
		return validationf("booked count %d exceeds capacity %d", t.bookedCount, t.capacity)
	}
	if t.isAvailable != (t.bookedCount < t.capacity) {
		return validationf("availability flag inconsistent with booked count %d/%d", t.bookedCount, t.capacity)
	}
	return nil
}

func (t *TimeSlot) ExperienceID() uuid.UUID { return t.experienceID }
func (t *TimeSlot) Date() time.Time         { return t.date }
func (t *TimeSlot) StartTime() time.Time    { return t.startTime }
func (t *TimeSlot) EndTime() time.Time      { return t.endTime }
func (t *TimeSlot) Capacity() int           { return t.capacity }
func (t *TimeSlot) BookedCount() int        { return t.bookedCount }
func (t *TimeSlot) IsAvailable() bool       { return t.isAvailable }

func (t *TimeSlot) AvailableSpots() int { return t.capacity - t.bookedCount }

func (t *TimeSlot) CanAccommodate(n int) bool {
	return n > 0 && n <= t.AvailableSpots()
}

// Reserve claims n seats.
func (t *TimeSlot) Reserve(n int) error {
	if n <= 0 {
		return validationf("reserve amount must be positive, got %d", n)
	}
	available := t.AvailableSpots()
	if n > available {
		return &CapacityError{Available: available, Requested: n}
	}
	t.bookedCount += n
	t.isAvailable = t.bookedCount < t.capacity
	t.bump()
	return nil
}

// Release returns n previously reserved seats.
func (t *TimeSlot) Release(n int) error {
	if n <= 0 {
		return validationf("release amount must be positive, got %d", n)
	}
	if n > t.bookedCount {
		return validationf("cannot release %d spots, only %d booked", n, t.bookedCount)
	}
	t.bookedCount -= n
	t.isAvailable = true
	t.bump()
	return nil
}

// Attrs returns the persisted form of the slot.
func (t *TimeSlot) Attrs() TimeSlotAttrs {
	return TimeSlotAttrs{
		ID:           t.id,
		ExperienceID: t.experienceID,
		Date:         t.date,
		StartTime:    t.startTime,
		EndTime:      t.endTime,
		Capacity:     t.capacity,
		BookedCount:  t.bookedCount,
		IsAvailable:  t.isAvailable,
		Version:      t.version,
		CreatedAt:    t.createdAt,
		UpdatedAt:    t.updatedAt,
	}
}
