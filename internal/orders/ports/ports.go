package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"go-storefront/internal/orders/domain"
)

// OrderStore is the transactional store behind the order engine
type OrderStore interface {
	// WithinTx runs fn inside a single store transaction. Any error returned
	// by fn rolls back everything fn wrote through tx.
	WithinTx(ctx context.Context, fn func(tx OrderTx) error) error

	// FindOrderView loads an order with product names resolved. When owner is
	// non-nil the order must also belong to that user.
	FindOrderView(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*domain.OrderView, error)

	// ListOrderViews loads all orders of a user, newest first
	ListOrderViews(ctx context.Context, userID uuid.UUID) ([]*domain.OrderView, error)

	// FindOrderIDByIdempotencyKey returns the order userID created with key.
	// Keys are scoped per user.
	FindOrderIDByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, error)
}

// OrderTx is a transaction-scoped handle. It is only valid inside the
// WithinTx callback that produced it.
type OrderTx interface {
	// LockProducts loads and row-locks the given products in ID order.
	// Missing products are absent from the result.
	LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductStock, error)

	// DecrementStock lowers stock by quantity only if enough remains
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error

	// IncrementStock raises stock by quantity
	IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error

	// InsertOrder persists an order and its lines
	InsertOrder(ctx context.Context, order *domain.Order) error

	// LockOrder loads and row-locks an order with its lines
	LockOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// UpdateOrderStatus moves an order from one status to another, stamping
	// updated_at with at. It fails if the stored status is no longer from.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, at time.Time) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderStatusChanged publishes a status change, including cancellations
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.Status) error
}

// Metrics records order engine outcomes
type Metrics interface {
	OrderCreated()
	StockRejected()
	Transitioned(from, to domain.Status)
	TxRetried(operation string)
}
