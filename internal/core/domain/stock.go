package domain

import "fmt"

// Stock is an immutable non-negative unit count.
type Stock struct {
	quantity int
}

func NewStock(quantity int) (Stock, error) {
	if quantity < 0 {
		return Stock{}, fmt.Errorf("%w: stock cannot be negative (%d)", ErrInvalidQuantity, quantity)
	}
	return Stock{quantity: quantity}, nil
}

func (s Stock) Quantity() int { return s.quantity }

func (s Stock) IsEmpty() bool { return s.quantity == 0 }

func (s Stock) CanReserve(n int) bool { return n > 0 && n <= s.quantity }

// Reserve returns a new Stock with n units removed.
func (s Stock) Reserve(n int) (Stock, error) {
	if n <= 0 {
		return Stock{}, fmt.Errorf("%w: reserve amount must be positive (%d)", ErrInvalidQuantity, n)
	}
	if n > s.quantity {
		return Stock{}, &StockError{Available: s.quantity, Requested: n}
	}
	return Stock{quantity: s.quantity - n}, nil
}

// Release returns a new Stock with n units added back.
func (s Stock) Release(n int) Stock {
	if n < 0 {
		n = 0
	}
	return Stock{quantity: s.quantity + n}
}
