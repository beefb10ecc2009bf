package events

import (
	"context"
	"log/slog"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

// LogPublisher writes events to the structured log. It is the default sink
// when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event ports.Event) error {
	p.log.InfoContext(ctx, "domain event",
		"event_id", event.ID,
		"event_type", event.Type,
		"aggregate_id", event.AggregateID,
		"occurred_at", event.OccurredAt,
		"data", event.Data)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
