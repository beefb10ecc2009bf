package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports/mocks"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	mezcal := f.seedProduct(t, seller, 650, 10)
	rug := f.seedProduct(t, seller, 1200, 2)

	mockEvents := mocks.NewEventPublisher(t)
	mockEvents.On("Publish", mock.Anything, eventOfType(ports.EventOrderCreated)).Return(nil).Once()
	service := services.NewOrderService(f.store, f.opts(services.WithEventPublisher(mockEvents))...)

	o, err := service.CreateOrder(f.ctx, services.CreateOrderRequest{
		UserID:   uuid.New(),
		SellerID: seller,
		Items: []services.OrderLine{
			{ProductID: mezcal.ID(), Quantity: 1},
			{ProductID: rug.ID(), Quantity: 2},
			{ProductID: mezcal.ID(), Quantity: 2},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderPendingPayment, o.Status())
	assert.Len(t, o.Items(), 2, "repeated products are merged")
	assert.Equal(t, "4350", o.Total().Amount().String())

	assert.Equal(t, 7, f.product(t, mezcal.ID()).Stock().Quantity())
	soldOut := f.product(t, rug.ID())
	assert.Equal(t, 0, soldOut.Stock().Quantity())
	assert.Equal(t, domain.ProductSoldOut, soldOut.Status())
}

func TestCreateOrder_Fail_RollsBackEveryLine(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	plenty := f.seedProduct(t, seller, 100, 10)
	scarce := f.seedProduct(t, seller, 100, 1)
	service := services.NewOrderService(f.store, f.opts()...)

	_, err := service.CreateOrder(f.ctx, services.CreateOrderRequest{
		UserID:   uuid.New(),
		SellerID: seller,
		Items: []services.OrderLine{
			{ProductID: plenty.ID(), Quantity: 3},
			{ProductID: scarce.ID(), Quantity: 2},
		},
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, f.product(t, plenty.ID()).Stock().Quantity())
	assert.Equal(t, 1, f.product(t, scarce.ID()).Stock().Quantity())
}

func TestCreateOrder_Fail_Validation(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	own := f.seedProduct(t, seller, 100, 5)
	foreign := f.seedProduct(t, uuid.New(), 100, 5)
	archived := f.seedProduct(t, seller, 100, 5)
	require.NoError(t, archived.Archive())
	require.NoError(t, f.store.SaveProduct(f.ctx, archived))
	service := services.NewOrderService(f.store, f.opts()...)

	tests := []struct {
		name   string
		items  []services.OrderLine
		target error
	}{
		{"no items", nil, domain.ErrValidation},
		{"zero quantity", []services.OrderLine{{ProductID: own.ID(), Quantity: 0}}, domain.ErrInvalidQuantity},
		{"mixed sellers", []services.OrderLine{{ProductID: own.ID(), Quantity: 1}, {ProductID: foreign.ID(), Quantity: 1}}, domain.ErrMixedSellers},
		{"archived product", []services.OrderLine{{ProductID: archived.ID(), Quantity: 1}}, domain.ErrInactiveProduct},
		{"unknown product", []services.OrderLine{{ProductID: uuid.New(), Quantity: 1}}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateOrder(f.ctx, services.CreateOrderRequest{UserID: uuid.New(), SellerID: seller, Items: tt.items})
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Equal(t, 5, f.product(t, own.ID()).Stock().Quantity())
}

func TestCancelOrder_RestocksAndReactivates(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	p := f.seedProduct(t, seller, 300, 2)
	service := services.NewOrderService(f.store, f.opts()...)

	o, err := service.CreateOrder(f.ctx, services.CreateOrderRequest{
		UserID: buyer, SellerID: seller, Items: []services.OrderLine{{ProductID: p.ID(), Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = service.CancelOrder(f.ctx, services.CancelOrderRequest{OrderID: o.ID(), ActorID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	res, err := service.CancelOrder(f.ctx, services.CancelOrderRequest{OrderID: o.ID(), ActorID: seller, Reason: "out of clay"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, res.Order.Status())
	assert.False(t, res.RequiresRefund)

	restocked := f.product(t, p.ID())
	assert.Equal(t, 2, restocked.Stock().Quantity())
	assert.Equal(t, domain.ProductActive, restocked.Status())

	_, err = service.CancelOrder(f.ctx, services.CancelOrderRequest{OrderID: o.ID(), ActorID: buyer})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, 2, f.product(t, p.ID()).Stock().Quantity())
}

func TestAdvanceFulfilment_Fail(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	p := f.seedProduct(t, seller, 300, 2)
	service := services.NewOrderService(f.store, f.opts()...)
	o, err := service.CreateOrder(f.ctx, services.CreateOrderRequest{
		UserID: uuid.New(), SellerID: seller, Items: []services.OrderLine{{ProductID: p.ID(), Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = service.AdvanceFulfilment(f.ctx, services.AdvanceFulfilmentRequest{OrderID: o.ID(), SellerID: o.UserID(), To: domain.OrderProcessing})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = service.AdvanceFulfilment(f.ctx, services.AdvanceFulfilmentRequest{OrderID: o.ID(), SellerID: seller, To: domain.OrderProcessing})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "unpaid orders cannot be processed")

	_, err = service.AdvanceFulfilment(f.ctx, services.AdvanceFulfilmentRequest{OrderID: o.ID(), SellerID: seller, To: domain.OrderCancelled})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
