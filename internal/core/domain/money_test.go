package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
)

func TestMoney(t *testing.T) {
	a, err := domain.NewMoney(decimal.RequireFromString("100.10"), "MXN")
	require.NoError(t, err)
	b, err := domain.NewMoney(decimal.RequireFromString("0.20"), "")
	require.NoError(t, err)
	assert.Equal(t, "MXN", b.Currency(), "empty currency falls back to the default")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "100.30 MXN", sum.String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.RequireFromString("99.9")))

	_, err = b.Subtract(a)
	assert.ErrorIs(t, err, domain.ErrNegativeResult)

	tripled, err := b.MultiplyInt(3)
	require.NoError(t, err)
	assert.True(t, tripled.Amount().Equal(decimal.RequireFromString("0.6")), "no float drift")

	_, err = a.Multiply(decimal.NewFromInt(-2))
	assert.ErrorIs(t, err, domain.ErrInvalidFactor)

	_, err = domain.NewMoney(decimal.NewFromInt(-1), "MXN")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	mxn, _ := domain.MoneyFromInt(10, "MXN")
	usd, _ := domain.MoneyFromInt(10, "USD")

	_, err := mxn.Add(usd)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	_, err = mxn.Subtract(usd)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	assert.False(t, mxn.Equal(usd))
}

func TestStock(t *testing.T) {
	_, err := domain.NewStock(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	s, err := domain.NewStock(3)
	require.NoError(t, err)
	assert.True(t, s.CanReserve(3))
	assert.False(t, s.CanReserve(4))

	left, err := s.Reserve(3)
	require.NoError(t, err)
	assert.True(t, left.IsEmpty())
	assert.Equal(t, 3, s.Quantity(), "stock values are immutable")

	_, err = left.Reserve(1)
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 1, stockErr.Requested)

	assert.Equal(t, 2, left.Release(2).Quantity())
}

func TestGuestCount(t *testing.T) {
	g, err := domain.NewGuestCount(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Value())

	_, err = domain.NewGuestCount(0, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestCount)
	_, err = domain.NewGuestCount(5, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestCount)
}

func TestKindAndCode(t *testing.T) {
	tests := []struct {
		err  error
		kind domain.ErrorKind
		code string
	}{
		{&domain.CapacityError{Available: 1, Requested: 2}, domain.KindValidation, "INSUFFICIENT_CAPACITY"},
		{&domain.StockError{Available: 1, Requested: 2}, domain.KindValidation, "INSUFFICIENT_STOCK"},
		{&domain.TransitionError{Entity: "booking", From: "CANCELLED", To: "CONFIRMED"}, domain.KindValidation, "INVALID_STATE_TRANSITION"},
		{&domain.ConflictError{Aggregate: "time_slot"}, domain.KindConflict, "CONCURRENCY_CONFLICT"},
		{domain.NewNotFound("booking", uuid.New()), domain.KindNotFound, "NOT_FOUND"},
		{domain.ErrForbidden, domain.KindForbidden, "FORBIDDEN"},
		{assert.AnError, domain.KindInternal, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, domain.KindOf(tt.err), tt.err.Error())
		assert.Equal(t, tt.code, domain.CodeOf(tt.err), tt.err.Error())
	}
}
