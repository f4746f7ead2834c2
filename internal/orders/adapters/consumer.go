package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/rabbitmq"
)

// FulfillmentQueue is the queue payment and shipping events are routed into
const FulfillmentQueue = "orders.fulfillment"

// FulfillmentBindings routes the external fulfillment events into FulfillmentQueue
var FulfillmentBindings = []rabbitmq.Binding{
	{Exchange: events.ExchangePayments, RoutingKey: events.RoutingKeyPaymentConfirmed},
	{Exchange: events.ExchangeShipping, RoutingKey: events.RoutingKeyShipmentDispatched},
}

// StatusUpdater moves an order to a new status
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, input application.UpdateStatusInput) error
}

// FulfillmentConsumer advances orders when payment and shipping report progress
type FulfillmentConsumer struct {
	consumer *rabbitmq.Consumer
	orders   StatusUpdater
	log      *logger.Logger
}

// NewFulfillmentConsumer creates the consumer and binds its queue
func NewFulfillmentConsumer(conn *rabbitmq.Connection, orders StatusUpdater, log *logger.Logger) (*FulfillmentConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(conn, FulfillmentQueue, FulfillmentBindings, log)
	if err != nil {
		return nil, err
	}
	return &FulfillmentConsumer{
		consumer: consumer,
		orders:   orders,
		log:      log,
	}, nil
}

// Start starts consuming fulfillment events
func (c *FulfillmentConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *FulfillmentConsumer) handleMessage(ctx context.Context, routingKey string, body []byte) error {
	var target domain.Status
	switch routingKey {
	case events.RoutingKeyPaymentConfirmed:
		target = domain.StatusPaid
	case events.RoutingKeyShipmentDispatched:
		target = domain.StatusShipped
	default:
		return rabbitmq.Discard(fmt.Errorf("unexpected routing key %q", routingKey))
	}

	var event events.FulfillmentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return rabbitmq.Discard(fmt.Errorf("failed to unmarshal %s event: %w", routingKey, err))
	}
	orderID, err := uuid.Parse(event.Payload.OrderID)
	if err != nil {
		return rabbitmq.Discard(fmt.Errorf("invalid order_id %q: %w", event.Payload.OrderID, err))
	}

	log := c.log.WithContext(ctx).With(
		zap.String("order_id", orderID.String()),
		zap.String("routing_key", routingKey),
	)

	err = c.orders.UpdateStatus(ctx, application.UpdateStatusInput{OrderID: orderID, Status: target.String()})
	switch {
	case err == nil:
		log.Info("order advanced by fulfillment event", zap.String("status", target.String()))
		return nil
	case errors.Is(err, errors.CodeInvalidTransition), errors.Is(err, errors.CodeNotFound):
		// Redelivering cannot make these succeed
		log.Warn("ignoring fulfillment event", zap.Error(err))
		return nil
	default:
		// Transient aborts and infrastructure failures are redelivered
		return err
	}
}
