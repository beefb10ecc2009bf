package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/adapter/repository/memory"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/retry"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// clock is shared by the store and the services so that created_at and the
// cleanup cutoff agree.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	clock *clock
	host  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := newClock()
	return &fixture{
		ctx:   context.Background(),
		store: memory.NewStore(memory.WithClock(c.Now)),
		clock: c,
		host:  uuid.New(),
	}
}

// opts returns the options every service under test shares, plus extra.
func (f *fixture) opts(extra ...services.Option) []services.Option {
	return append([]services.Option{
		services.WithLogger(discard),
		services.WithClock(f.clock.Now),
		services.WithRetry(retry.Options{MaxRetries: 3}),
	}, extra...)
}

func (f *fixture) seedExperience(t *testing.T, maxCapacity int) *domain.Experience {
	t.Helper()
	price, err := domain.MoneyFromInt(350, "MXN")
	require.NoError(t, err)
	exp, err := domain.NewExperience(domain.NewExperienceParams{
		HostID:          f.host,
		Title:           "Barro negro pottery class",
		Description:     "Shape and burnish a piece in San Bartolo Coyotepec",
		DurationMinutes: 180,
		MaxCapacity:     maxCapacity,
		Price:           price,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.SaveExperience(f.ctx, exp))
	return exp
}

func (f *fixture) seedSlot(t *testing.T, exp *domain.Experience, capacity int) *domain.TimeSlot {
	t.Helper()
	start := f.clock.Now().Add(72 * time.Hour)
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	slot, err := domain.NewTimeSlot(exp.ID(), date, start, start.Add(3*time.Hour), capacity)
	require.NoError(t, err)
	require.NoError(t, f.store.SaveTimeSlot(f.ctx, slot))
	return slot
}

func (f *fixture) seedProduct(t *testing.T, seller uuid.UUID, price int64, stock int) *domain.Product {
	t.Helper()
	m, err := domain.MoneyFromInt(price, "MXN")
	require.NoError(t, err)
	st, err := domain.NewStock(stock)
	require.NoError(t, err)
	p, err := domain.NewProduct(seller, "Alebrije jaguar", m, st)
	require.NoError(t, err)
	require.NoError(t, f.store.SaveProduct(f.ctx, p))
	return p
}

func (f *fixture) slot(t *testing.T, id uuid.UUID) *domain.TimeSlot {
	t.Helper()
	ts, err := f.store.FindTimeSlotByID(f.ctx, id)
	require.NoError(t, err)
	return ts
}

func (f *fixture) product(t *testing.T, id uuid.UUID) *domain.Product {
	t.Helper()
	p, err := f.store.FindProductByID(f.ctx, id)
	require.NoError(t, err)
	return p
}
