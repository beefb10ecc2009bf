package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func sampleEvent() ports.Event {
	at := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)
	return ports.NewEvent(ports.EventBookingCreated, uuid.New(), at, map[string]any{"guest_count": 2})
}

func TestRabbitPublisher_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, exchange: "guelaguetza.events"}
	ev := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), ev))

	assert.Equal(t, "guelaguetza.events", ch.exchange)
	assert.Equal(t, "booking.created", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, ev.ID.String(), ch.msg.MessageId)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded ports.Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, ev.AggregateID, decoded.AggregateID)
	assert.Equal(t, float64(2), decoded.Data["guest_count"])
}

func TestRabbitPublisher_PropagatesBrokerError(t *testing.T) {
	p := &RabbitPublisher{ch: &fakeChannel{err: errors.New("channel closed")}, exchange: "x"}

	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
}

func TestKafkaPublisher_KeysByAggregate(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w, topic: "reservations"}
	ev := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "reservations", msg.Topic)
	assert.Equal(t, ev.AggregateID.String(), string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event-type", Value: []byte("booking.created")})
}

func TestLogPublisher_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	assert.Contains(t, buf.String(), `"event_type":"booking.created"`)
}
