package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	return NewHeaderCarrier(&msg).Get(key)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.review.added", Topic("review", "added"))
}

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"productId": "p_001"}
	event, err := NewEvent("product.created", "product", "p_001", "storefront", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "product.created", event.EventType)
	assert.Equal(t, "product", event.AggregateType)
	assert.Equal(t, "p_001", event.AggregateID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got map[string]string
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("x", "y", "z", "s", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal x payload")
}

func TestEvent_Chaining(t *testing.T) {
	event, err := NewEvent("review.added", "product", "p_001", "storefront", nil)
	require.NoError(t, err)

	same := event.WithCorrelationID("corr-1").WithMetadata("rating", "5")
	assert.Same(t, event, same)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "5", event.Metadata["rating"])
}

func TestUnmarshalEvent(t *testing.T) {
	event, err := NewEvent("product.deleted", "product", "p_002", "storefront", map[string]string{"productId": "p_002"})
	require.NoError(t, err)
	b, err := json.Marshal(event)
	require.NoError(t, err)

	restored, err := UnmarshalEvent(b)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, restored.EventID)

	_, err = UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}

func TestProducer_Publish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &recordingWriter{}
	var logs bytes.Buffer
	p := NewProducerWithWriter(w, nil, slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	event, err := NewEvent("review.added", "product", "p_001", "storefront", map[string]string{"rating": "4"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(ctx, Topic("review", "added"), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "storefront.review.added", msg.Topic)
	assert.Equal(t, []byte("p_001"), msg.Key)
	assert.Equal(t, "review.added", header(msg, "event_type"))
	assert.Equal(t, "storefront", header(msg, "source"))
	assert.Equal(t, "corr-9", header(msg, "correlation_id"))
	assert.Contains(t, header(msg, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	decoded, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Contains(t, logs.String(), "event published")
}

func TestProducer_PublishError(t *testing.T) {
	w := &recordingWriter{err: fmt.Errorf("leader not available")}
	var logs bytes.Buffer
	p := NewProducerWithWriter(w, nil, slog.New(slog.NewJSONHandler(&logs, nil)))

	event, err := NewEvent("product.created", "product", "p_001", "storefront", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), Topic("product", "created"), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Contains(t, logs.String(), "failed to publish event")
}

func TestProducer_PingWithoutBrokers(t *testing.T) {
	p := NewProducerWithWriter(&recordingWriter{}, nil, slog.Default())
	assert.EqualError(t, p.Ping(context.Background()), "kafka: no brokers configured")
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, slog.Default()).Close())
	assert.True(t, w.closed)
}

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "existing", Value: []byte("v1")}}}
	c := NewHeaderCarrier(&msg)

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Empty(t, c.Get("missing"))

	c.Set("existing", "v2")
	c.Set("added", "v3")
	assert.Equal(t, "v2", c.Get("existing"))
	assert.Equal(t, []string{"existing", "added"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}
