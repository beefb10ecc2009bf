package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrNegativeResult         = errors.New("operation would produce a negative amount")
	ErrInvalidFactor          = errors.New("invalid multiplication factor")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidGuestCount      = errors.New("invalid guest count")
	ErrInsufficientCapacity   = errors.New("insufficient capacity")
	ErrInactiveExperience     = errors.New("experience is not active")
	ErrInactiveProduct        = errors.New("product is not active")
	ErrSlotMismatch           = errors.New("time slot does not belong to experience")
	ErrMixedSellers           = errors.New("order items belong to different sellers")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrForbidden              = errors.New("operation not permitted")
	ErrNotFound               = errors.New("not found")
	ErrConcurrencyConflict    = errors.New("concurrency conflict")
)

// CapacityError reports a reservation larger than what a time slot has left.
type CapacityError struct {
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: only %d spots available, requested %d", e.Available, e.Requested)
}

func (e *CapacityError) Is(target error) bool { return target == ErrInsufficientCapacity }

// StockError reports a stock reservation larger than the remaining quantity.
type StockError struct {
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock: only %d units available, requested %d", e.Available, e.Requested)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// TransitionError names the entity and both states of a rejected transition.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidStateTransition }

// ConflictError is returned by a conditional write whose version predicate
// matched no record.
type ConflictError struct {
	Aggregate       string
	ID              uuid.UUID
	ExpectedVersion int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict: %s %s was modified (expected version %d)", e.Aggregate, e.ID, e.ExpectedVersion)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }

type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFound(entity string, id uuid.UUID) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
)

var validationErrors = []error{
	ErrValidation,
	ErrInvalidAmount,
	ErrCurrencyMismatch,
	ErrNegativeResult,
	ErrInvalidFactor,
	ErrInvalidQuantity,
	ErrInsufficientStock,
	ErrInvalidGuestCount,
	ErrInsufficientCapacity,
	ErrInactiveExperience,
	ErrInactiveProduct,
	ErrSlotMismatch,
	ErrMixedSellers,
	ErrInvalidStateTransition,
}

// KindOf classifies err for callers that translate failures into responses.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return KindValidation
		}
	}
	return KindInternal
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrConcurrencyConflict, "CONCURRENCY_CONFLICT"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrInsufficientCapacity, "INSUFFICIENT_CAPACITY"},
	{ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{ErrInactiveExperience, "INACTIVE_EXPERIENCE"},
	{ErrInactiveProduct, "INACTIVE_PRODUCT"},
	{ErrSlotMismatch, "SLOT_MISMATCH"},
	{ErrMixedSellers, "MIXED_SELLERS"},
	{ErrInvalidStateTransition, "INVALID_STATE_TRANSITION"},
	{ErrInvalidGuestCount, "INVALID_GUEST_COUNT"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrCurrencyMismatch, "CURRENCY_MISMATCH"},
	{ErrNegativeResult, "NEGATIVE_RESULT"},
	{ErrInvalidFactor, "INVALID_FACTOR"},
	{ErrInvalidQuantity, "INVALID_QUANTITY"},
	{ErrValidation, "VALIDATION_ERROR"},
}

// CodeOf returns the stable error code exposed to API clients.
func CodeOf(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL_ERROR"
}
