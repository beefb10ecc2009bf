package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/retry"
)

// base carries the collaborators every use case shares.
type base struct {
	repo   ports.Repository
	events ports.EventPublisher
	cache  ports.SlotCache
	log    *slog.Logger
	retry  retry.Options
	now    func() time.Time
}

type Option func(*base)

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(b *base) { b.events = p }
}

func WithSlotCache(c ports.SlotCache) Option {
	return func(b *base) { b.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.log = l }
}

func WithRetry(o retry.Options) Option {
	return func(b *base) { b.retry = o }
}

func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

func newBase(repo ports.Repository, opts []Option) base {
	b := base{
		repo:  repo,
		log:   slog.Default(),
		retry: retry.DefaultOptions(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.retry.Logger == nil {
		b.retry.Logger = b.log
	}
	return b
}

// inTx runs fn in a transaction and retries the whole unit on version
// conflicts, so every attempt reloads current state.
func (b *base) inTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repository) error) error {
	return retry.Do(ctx, b.retry, func(ctx context.Context) error {
		return b.repo.WithTransaction(ctx, fn)
	})
}

// publish runs after commit; a lost event never undoes a committed write.
func (b *base) publish(ctx context.Context, eventType string, aggregateID uuid.UUID, data map[string]any) {
	if b.events == nil {
		return
	}
	ev := ports.NewEvent(eventType, aggregateID, b.now(), data)
	if err := b.events.Publish(ctx, ev); err != nil {
		b.log.Error("event publish failed", "event_type", eventType, "aggregate_id", aggregateID, "err", err)
	}
}

func (b *base) invalidateSlots(ctx context.Context, experienceID uuid.UUID) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Invalidate(ctx, experienceID); err != nil {
		b.log.Warn("slot cache invalidation failed", "experience_id", experienceID, "err", err)
	}
}

// releaseBookingHold returns the booking's seats to its time slot and applies
// the terminal transition, persisting both inside tx.
func releaseBookingHold(ctx context.Context, tx ports.Repository, b *domain.Booking, transition func(*domain.Booking) error) (*domain.TimeSlot, error) {
	slot, err := tx.FindTimeSlotByID(ctx, b.TimeSlotID())
	if err != nil {
		return nil, err
	}
	if err := slot.Release(b.GuestCount()); err != nil {
		return nil, err
	}
	if err := transition(b); err != nil {
		return nil, err
	}
	if err := tx.SaveTimeSlot(ctx, slot); err != nil {
		return nil, err
	}
	if err := tx.SaveBooking(ctx, b); err != nil {
		return nil, err
	}
	return slot, nil
}

// releaseOrderHold returns every line's units to its product and applies the
// terminal transition, persisting all of them inside tx.
func releaseOrderHold(ctx context.Context, tx ports.Repository, o *domain.Order, transition func(*domain.Order) error) error {
	products := make([]*domain.Product, 0, len(o.Items()))
	for _, item := range sortedItems(o.Items()) {
		p, err := tx.FindProductByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := p.ReleaseStock(item.Quantity); err != nil {
			return err
		}
		products = append(products, p)
	}
	if err := transition(o); err != nil {
		return err
	}
	for _, p := range products {
		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
	}
	return tx.SaveOrder(ctx, o)
}
