package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
)

func TestNewClient_TrimsBrokers(t *testing.T) {
	c := NewClient([]string{" kafka:9092 ", "", "kafka-2:9092"})

	assert.Equal(t, []string{"kafka:9092", "kafka-2:9092"}, c.Brokers)
	assert.True(t, c.Enabled())
	assert.False(t, NewClient(nil).Enabled())
}

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewPublisher(NewClient(nil), events.ExchangeOrders, logger.NewNop())
	assert.Error(t, err)
}

func TestNewMessage_KeyedByOrder(t *testing.T) {
	ctx := logger.WithTraceIDContext(context.Background(), "trace-3")
	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		OrderID: "order-1",
		From:    "Pending",
		To:      "Cancelled",
	}, true, "trace-3")
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	msg, err := newMessage(ctx, events.RoutingKeyOrderCancelled, event, now)

	require.NoError(t, err)
	assert.Equal(t, "order-1", string(msg.Key))
	assert.Equal(t, now, msg.Time)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, events.RoutingKeyOrderCancelled, headers[headerRoutingKey])
	assert.Equal(t, "trace-3", headers[headerTraceID])

	var decoded events.OrderStatusChangedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, events.RoutingKeyOrderCancelled, decoded.EventType)
	assert.Equal(t, "Cancelled", decoded.Payload.To)
}

func TestNewMessage_UnkeyedFallsBackToRoutingKey(t *testing.T) {
	msg, err := newMessage(context.Background(), "misc", map[string]string{"a": "b"}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, "misc", string(msg.Key))
}
