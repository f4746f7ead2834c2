package application

import (
	"bytes"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/errors"
)

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	UserID         uuid.UUID
	Lines          []domain.LineRequest
	IdempotencyKey string
}

// CreateOrderOutput represents the output of creating an order
type CreateOrderOutput struct {
	OrderID     uuid.UUID
	TotalAmount decimal.Decimal
	// Replayed is set when IdempotencyKey matched an order created earlier
	Replayed bool
}

// CreateOrder validates a cart, reserves stock for every line and stores a
// pending order, all in one transaction. Either every line is reserved and
// the order exists, or nothing changed.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if input.UserID == uuid.Nil {
		return nil, domain.ErrUserIDRequired
	}
	if err := domain.ValidateLineRequests(input.Lines); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		if out, ok, err := uc.replay(ctx, input.UserID, input.IdempotencyKey); err != nil || ok {
			return out, err
		}
	}

	var order *domain.Order
	err := uc.inTx(ctx, "create_order", func(tx ports.OrderTx) error {
		built, err := uc.buildOrder(ctx, tx, input)
		if err != nil {
			return err
		}
		order = built
		return nil
	})
	if err != nil {
		// Lost a race with a concurrent request carrying the same key
		if input.IdempotencyKey != "" && errors.Is(err, errors.CodeConflict) {
			if out, ok, replayErr := uc.replay(ctx, input.UserID, input.IdempotencyKey); replayErr == nil && ok {
				return out, nil
			}
		}
		return nil, err
	}

	uc.metrics.OrderCreated()

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.String("order_id", order.ID.String()),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	return &CreateOrderOutput{OrderID: order.ID, TotalAmount: order.TotalAmount}, nil
}

func (uc *OrderUseCase) replay(ctx context.Context, userID uuid.UUID, key string) (*CreateOrderOutput, bool, error) {
	orderID, err := uc.store.FindOrderIDByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	uc.log.WithContext(ctx).Info("order request replayed",
		zap.String("order_id", orderID.String()),
		zap.String("idempotency_key", key),
	)
	return &CreateOrderOutput{OrderID: orderID, Replayed: true}, true, nil
}

// buildOrder runs inside the transaction. Products are locked before their
// stock is read so concurrent checkouts for the same product serialize here.
func (uc *OrderUseCase) buildOrder(ctx context.Context, tx ports.OrderTx, input CreateOrderInput) (*domain.Order, error) {
	order, err := domain.NewOrder(input.UserID, uc.opts.Now())
	if err != nil {
		return nil, err
	}
	order.IdempotencyKey = input.IdempotencyKey

	products, err := tx.LockProducts(ctx, distinctProductIDs(input.Lines))
	if err != nil {
		return nil, err
	}

	// remaining tracks stock left per product while lines are taken in request order
	remaining := make(map[uuid.UUID]int, len(products))
	for _, req := range input.Lines {
		product, ok := products[req.ProductID]
		if !ok {
			return nil, domain.NewProductNotFound(req.ProductID)
		}

		left, seen := remaining[product.ID]
		if !seen {
			left = product.StockQuantity
		}
		if product.IsActive && req.Quantity > left {
			uc.metrics.StockRejected()
			return nil, domain.NewInsufficientStock(product.ID, req.Quantity, left)
		}

		if _, err := order.AddLine(product, req.Quantity); err != nil {
			return nil, err
		}
		remaining[product.ID] = left - req.Quantity
	}

	reserved := order.QuantitiesByProduct()
	for _, productID := range sortedIDs(reserved) {
		if err := tx.DecrementStock(ctx, productID, reserved[productID]); err != nil {
			return nil, err
		}
	}

	if err := tx.InsertOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func distinctProductIDs(lines []domain.LineRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		seen[line.ProductID] += line.Quantity
	}
	return sortedIDs(seen)
}

// sortedIDs returns map keys in byte order, the order rows are locked in
func sortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}
