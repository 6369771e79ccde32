package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Fields(t *testing.T) {
	type cartData struct {
		ItemCount int `json:"item_count"`
	}

	event, err := NewEvent("cart.updated", "@RocketShoes:cart", "cart-store", cartData{ItemCount: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "cart.updated", event.Type)
	assert.Equal(t, "@RocketShoes:cart", event.Key)
	assert.Equal(t, "cart-store", event.Source)
	assert.WithinDuration(t, time.Now().UTC(), event.OccurredAt, 2*time.Second)
	assert.JSONEq(t, `{"item_count":3}`, string(event.Data))
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("cart.updated", "@RocketShoes:cart", "cart-store", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode cart.updated payload")
}

func TestWithCorrelationID_KeepsExisting(t *testing.T) {
	event, err := NewEvent("cart.updated", "@RocketShoes:cart", "cart-store", nil)
	require.NoError(t, err)

	event.WithCorrelationID("")
	assert.Empty(t, event.CorrelationID)

	event.WithCorrelationID("corr-1").WithCorrelationID("corr-2")
	assert.Equal(t, "corr-1", event.CorrelationID)
}

func TestEvent_Message(t *testing.T) {
	event, err := NewEvent("cart.notification", "@RocketShoes:cart", "cart-store", map[string]string{"level": "error"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-abc").WithMetadata("operation", "add_product")

	msg, err := event.Message("ecommerce.cart.notification")
	require.NoError(t, err)

	assert.Equal(t, "ecommerce.cart.notification", msg.Topic)
	assert.Equal(t, []byte("@RocketShoes:cart"), msg.Key)
	assert.Equal(t, []kafka.Header{
		{Key: "event_type", Value: []byte("cart.notification")},
		{Key: "source", Value: []byte("cart-store")},
		{Key: "correlation_id", Value: []byte("corr-abc")},
	}, msg.Headers)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded["id"])
	assert.Equal(t, "corr-abc", decoded["correlation_id"])
	assert.Equal(t, map[string]any{"operation": "add_product"}, decoded["metadata"])
	assert.Equal(t, map[string]any{"level": "error"}, decoded["data"])
}

func TestEvent_MessageWithoutCorrelationID(t *testing.T) {
	event, err := NewEvent("cart.updated", "@RocketShoes:cart", "cart-store", nil)
	require.NoError(t, err)

	msg, err := event.Message("ecommerce.cart.updated")
	require.NoError(t, err)
	assert.Len(t, msg.Headers, 2)
	assert.NotContains(t, string(msg.Value), "correlation_id")
}

func TestWithMetadata_NilMap(t *testing.T) {
	e := &Event{}
	e.WithMetadata("k", "v")
	assert.Equal(t, "v", e.Metadata["k"])
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestProducer_ImplementsPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	p := NewProducer(DefaultProducerConfig([]string{"localhost:9092"}), logger)
	defer p.Close()

	var _ Publisher = p
}
