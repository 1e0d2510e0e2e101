package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headerValue(headers []kafka.Header, key string) string {
	return HeaderCarrier{Headers: &headers}.Get(key)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "provisimarket.cart.updated", Topic("cart", "updated"))
	assert.Equal(t, "provisimarket.product.rated", Topic("product", "rated"))
}

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("cart.updated", "sess-1", "cart", "provisimarket", map[string]int{"lines": 2})
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, 1, evt.Version)
	assert.False(t, evt.Timestamp.IsZero())
	assert.JSONEq(t, `{"lines":2}`, string(evt.Data))

	var payload map[string]int
	require.NoError(t, evt.UnmarshalData(&payload))
	assert.Equal(t, 2, payload["lines"])

	_, err = NewEvent("bad", "x", "x", "x", make(chan int))
	assert.Error(t, err)
}

func TestEvent_RoundTrip(t *testing.T) {
	evt, err := NewEvent("product.rated", "p1", "product", "provisimarket", nil)
	require.NoError(t, err)
	evt.WithCorrelationID("corr-1").WithMetadata("store_id", "s1")

	data, err := evt.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID, got.EventID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "s1", got.Metadata["store_id"])

	_, err = UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}

func TestProducer_Publish(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &recordingWriter{}
	p := NewProducerWithWriter(w, nil, testLogger())
	topic := Topic("cart", "updated")
	before := testutil.ToFloat64(ProducerMessagesPublished.WithLabelValues(topic))

	evt, err := NewEvent("cart.updated", "sess-1", "cart", "provisimarket", nil)
	require.NoError(t, err)
	evt.WithCorrelationID("corr-9")
	require.NoError(t, p.Publish(ctx, topic, evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.Equal(t, "cart.updated", headerValue(msg.Headers, "event_type"))
	assert.Equal(t, "corr-9", headerValue(msg.Headers, "correlation_id"))
	assert.Contains(t, headerValue(msg.Headers, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Equal(t, before+1, testutil.ToFloat64(ProducerMessagesPublished.WithLabelValues(topic)))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, testLogger())
	topic := Topic("product", "rated")
	before := testutil.ToFloat64(ProducerPublishErrors.WithLabelValues(topic))

	evt, err := NewEvent("product.rated", "p1", "product", "provisimarket", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), topic, evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), topic)
	assert.Equal(t, before+1, testutil.ToFloat64(ProducerPublishErrors.WithLabelValues(topic)))
}

func TestHeaderCarrier(t *testing.T) {
	var headers []kafka.Header
	c := HeaderCarrier{Headers: &headers}

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	assert.Equal(t, "3", c.Get("a"))
	assert.Empty(t, c.Get("missing"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
	assert.Error(t, NewProducerWithWriter(&recordingWriter{}, nil, testLogger()).Ping(context.Background()))
}
