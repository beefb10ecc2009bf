package domain

import "fmt"

// GuestCount is a party size bounded by an experience's maximum capacity.
type GuestCount struct {
	value    int
	capacity int
}

func NewGuestCount(value, capacity int) (GuestCount, error) {
	if value < 1 {
		return GuestCount{}, fmt.Errorf("%w: at least 1 guest is required, got %d", ErrInvalidGuestCount, value)
	}
	if value > capacity {
		return GuestCount{}, fmt.Errorf("%w: %d guests exceeds maximum capacity of %d", ErrInvalidGuestCount, value, capacity)
	}
	return GuestCount{value: value, capacity: capacity}, nil
}

func (g GuestCount) Value() int    { return g.value }
func (g GuestCount) Capacity() int { return g.capacity }
