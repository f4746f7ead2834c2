package events

import "time"

// Exchange names. Kafka uses the same names as topics.
const (
	ExchangeOrders   = "orders.events"
	ExchangePayments = "payments.events"
	ExchangeShipping = "shipping.events"
)

// Routing keys
const (
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderCancelled     = "order.cancelled"
	RoutingKeyOrderStatusChanged = "order.status_changed"
	RoutingKeyPaymentConfirmed   = "payment.confirmed"
	RoutingKeyShipmentDispatched = "shipment.dispatched"
)

const version = "1.0"

// Keyed is implemented by events that must stay ordered per aggregate
type Keyed interface {
	PartitionKey() string
}

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent struct {
	Version   string              `json:"version"`
	EventType string              `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	TraceID   string              `json:"trace_id"`
	Payload   OrderCreatedPayload `json:"payload"`
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	TotalAmount string             `json:"total_amount"`
	Status      string             `json:"status"`
	Lines       []OrderLinePayload `json:"lines"`
	CreatedAt   time.Time          `json:"created_at"`
}

// OrderLinePayload is one reserved line
type OrderLinePayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(payload OrderCreatedPayload, traceID string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		Version:   version,
		EventType: RoutingKeyOrderCreated,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// PartitionKey keys the event by order
func (e *OrderCreatedEvent) PartitionKey() string {
	return e.Payload.OrderID
}

// OrderStatusChangedEvent is published for every committed status change.
// Cancellations use RoutingKeyOrderCancelled.
type OrderStatusChangedEvent struct {
	Version   string                    `json:"version"`
	EventType string                    `json:"event_type"`
	Timestamp time.Time                 `json:"timestamp"`
	TraceID   string                    `json:"trace_id"`
	Payload   OrderStatusChangedPayload `json:"payload"`
}

// OrderStatusChangedPayload contains the transition
type OrderStatusChangedPayload struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewOrderStatusChangedEvent creates a status change event with the routing
// key it must be published under
func NewOrderStatusChangedEvent(payload OrderStatusChangedPayload, cancelled bool, traceID string) *OrderStatusChangedEvent {
	eventType := RoutingKeyOrderStatusChanged
	if cancelled {
		eventType = RoutingKeyOrderCancelled
	}
	return &OrderStatusChangedEvent{
		Version:   version,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// PartitionKey keys the event by order
func (e *OrderStatusChangedEvent) PartitionKey() string {
	return e.Payload.OrderID
}

// FulfillmentEvent is the shape shared by payment.confirmed and
// shipment.dispatched messages from the payment and shipping services
type FulfillmentEvent struct {
	Version   string             `json:"version"`
	EventType string             `json:"event_type"`
	Timestamp time.Time          `json:"timestamp"`
	TraceID   string             `json:"trace_id"`
	Payload   FulfillmentPayload `json:"payload"`
}

// FulfillmentPayload names the order the external step completed for
type FulfillmentPayload struct {
	OrderID   string `json:"order_id"`
	Reference string `json:"reference,omitempty"`
}
