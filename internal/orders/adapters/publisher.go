package adapters

import (
	"context"

	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
)

// MessagePublisher is a broker transport; both *rabbitmq.Publisher and
// *kafka.Publisher satisfy it
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// BrokerPublisher implements ports.EventPublisher on a message broker
type BrokerPublisher struct {
	publisher MessagePublisher
}

// NewBrokerPublisher creates a new event publisher
func NewBrokerPublisher(publisher MessagePublisher) *BrokerPublisher {
	return &BrokerPublisher{publisher: publisher}
}

// PublishOrderCreated publishes an order created event
func (p *BrokerPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	lines := make([]events.OrderLinePayload, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = events.OrderLinePayload{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
		}
	}

	event := events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		TotalAmount: order.TotalAmount.StringFixed(2),
		Status:      order.Status.String(),
		Lines:       lines,
		CreatedAt:   order.CreatedAt,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishOrderStatusChanged publishes order.cancelled or order.status_changed
func (p *BrokerPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.Status) error {
	cancelled := order.Status == domain.StatusCancelled
	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		From:      from.String(),
		To:        order.Status.String(),
		ChangedAt: order.UpdatedAt,
	}, cancelled, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, event.EventType, event)
}
