package adapters

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/internal/orders/application"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/rabbitmq"
)

type fakeUpdater struct {
	calls []application.UpdateStatusInput
	err   error
}

func (f *fakeUpdater) UpdateStatus(_ context.Context, input application.UpdateStatusInput) error {
	f.calls = append(f.calls, input)
	return f.err
}

func fulfillmentBody(t *testing.T, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(events.FulfillmentEvent{
		Version:   "1.0",
		EventType: events.RoutingKeyPaymentConfirmed,
		Payload:   events.FulfillmentPayload{OrderID: orderID},
	})
	require.NoError(t, err)
	return body
}

func TestFulfillmentConsumer_RoutesToStatus(t *testing.T) {
	orderID := uuid.New()
	tests := []struct {
		routingKey string
		status     string
	}{
		{events.RoutingKeyPaymentConfirmed, "Paid"},
		{events.RoutingKeyShipmentDispatched, "Shipped"},
	}

	for _, tt := range tests {
		t.Run(tt.routingKey, func(t *testing.T) {
			updater := &fakeUpdater{}
			c := &FulfillmentConsumer{orders: updater, log: logger.NewNop()}

			err := c.handleMessage(context.Background(), tt.routingKey, fulfillmentBody(t, orderID.String()))

			require.NoError(t, err)
			require.Len(t, updater.calls, 1)
			assert.Equal(t, orderID, updater.calls[0].OrderID)
			assert.Equal(t, tt.status, updater.calls[0].Status)
		})
	}
}

func TestFulfillmentConsumer_ErrorHandling(t *testing.T) {
	tests := []struct {
		name        string
		routingKey  string
		body        []byte
		updateErr   error
		wantErr     bool
		wantDiscard bool
	}{
		{"invalid transition is acked", events.RoutingKeyShipmentDispatched, nil, errors.NewInvalidTransition("Pending", "Shipped"), false, false},
		{"unknown order is acked", events.RoutingKeyPaymentConfirmed, nil, errors.NewNotFound("order", "x"), false, false},
		{"transient is requeued", events.RoutingKeyPaymentConfirmed, nil, errors.NewTransient("deadlock", nil), true, false},
		{"malformed body is discarded", events.RoutingKeyPaymentConfirmed, []byte("{"), nil, true, true},
		{"bad order id is discarded", events.RoutingKeyPaymentConfirmed, []byte(`{"payload":{"order_id":"nope"}}`), nil, true, true},
		{"unknown routing key is discarded", "payment.failed", nil, nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := &fakeUpdater{err: tt.updateErr}
			c := &FulfillmentConsumer{orders: updater, log: logger.NewNop()}
			body := tt.body
			if body == nil {
				body = fulfillmentBody(t, uuid.NewString())
			}

			err := c.handleMessage(context.Background(), tt.routingKey, body)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantDiscard, rabbitmq.IsDiscard(err))
		})
	}
}
