package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports/mocks"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

func TestCreateTimeSlot(t *testing.T) {
	f := newFixture(t)
	exp := f.seedExperience(t, 12)

	mockCache := mocks.NewSlotCache(t)
	mockCache.On("Invalidate", mock.Anything, exp.ID()).Return(nil).Once()
	service := services.NewCatalogService(f.store, "MXN", f.opts(services.WithSlotCache(mockCache))...)

	start := time.Date(2025, 7, 28, 17, 30, 0, 0, time.FixedZone("CST", -6*3600))
	slot, err := service.CreateTimeSlot(f.ctx, services.CreateTimeSlotRequest{
		HostID:       f.host,
		ExperienceID: exp.ID(),
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, 12, slot.Capacity(), "capacity defaults to the experience maximum")
	assert.Equal(t, time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC), slot.Date())
	assert.True(t, slot.IsAvailable())
	assert.Equal(t, 1, slot.Version())
}

func TestCreateTimeSlot_Fail(t *testing.T) {
	f := newFixture(t)
	exp := f.seedExperience(t, 12)
	service := services.NewCatalogService(f.store, "MXN", f.opts()...)
	start := f.clock.Now().Add(24 * time.Hour)

	_, err := service.CreateTimeSlot(f.ctx, services.CreateTimeSlotRequest{
		HostID: uuid.New(), ExperienceID: exp.ID(), StartTime: start, EndTime: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = service.CreateTimeSlot(f.ctx, services.CreateTimeSlotRequest{
		HostID: f.host, ExperienceID: exp.ID(), StartTime: start, EndTime: start,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateExperience(t *testing.T) {
	f := newFixture(t)
	exp := f.seedExperience(t, 12)
	service := services.NewCatalogService(f.store, "MXN", f.opts()...)

	price := decimal.RequireFromString("425.50")
	capacity := 8
	inactive := false
	updated, err := service.UpdateExperience(f.ctx, services.UpdateExperienceRequest{
		ExperienceID: exp.ID(),
		HostID:       f.host,
		Price:        &price,
		MaxCapacity:  &capacity,
		Active:       &inactive,
	})

	require.NoError(t, err)
	assert.True(t, updated.Price().Amount().Equal(price))
	assert.Equal(t, "MXN", updated.Price().Currency())
	assert.Equal(t, 8, updated.MaxCapacity())
	assert.False(t, updated.IsActive())
	assert.Greater(t, updated.Version(), exp.Version())

	_, err = service.UpdateExperience(f.ctx, services.UpdateExperienceRequest{ExperienceID: exp.ID(), HostID: uuid.New(), Price: &price})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRateExperience(t *testing.T) {
	f := newFixture(t)
	exp := f.seedExperience(t, 12)
	service := services.NewCatalogService(f.store, "MXN", f.opts()...)

	_, err := service.RateExperience(f.ctx, exp.ID(), 5)
	require.NoError(t, err)
	rated, err := service.RateExperience(f.ctx, exp.ID(), 4)
	require.NoError(t, err)

	assert.InDelta(t, 4.5, rated.Rating(), 1e-9)
	assert.Equal(t, 2, rated.ReviewCount())

	_, err = service.RateExperience(f.ctx, exp.ID(), 6)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateAndArchiveProduct(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	service := services.NewCatalogService(f.store, "MXN", f.opts()...)

	p, err := service.CreateProduct(f.ctx, services.CreateProductRequest{
		SellerID: seller,
		Name:     "Rebozo de seda",
		Price:    decimal.RequireFromString("1850"),
		Stock:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, "MXN", p.Price().Currency())
	assert.Equal(t, domain.ProductActive, p.Status())

	_, err = service.ArchiveProduct(f.ctx, p.ID(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	archived, err := service.ArchiveProduct(f.ctx, p.ID(), seller)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductArchived, archived.Status())

	_, err = service.ArchiveProduct(f.ctx, p.ID(), seller)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = service.CreateProduct(f.ctx, services.CreateProductRequest{
		SellerID: seller, Name: "Free sample", Price: decimal.NewFromInt(-1), Stock: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
