package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
)

// UpdateStatusInput represents the input for an administrative status change
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  string
}

// UpdateStatus moves an order to the requested status if the transition
// table allows it. Entering Cancelled returns the order's stock.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, input UpdateStatusInput) error {
	target, err := domain.ParseStatus(input.Status)
	if err != nil {
		return err
	}

	var (
		order *domain.Order
		from  domain.Status
	)
	err = uc.inTx(ctx, "update_status", func(tx ports.OrderTx) error {
		locked, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(locked.Status, target) {
			return domain.NewInvalidTransition(locked.Status, target)
		}

		from = locked.Status
		order = locked
		return uc.applyTransition(ctx, tx, locked, target)
	})
	if err != nil {
		return err
	}

	uc.transitioned(ctx, order, from)
	return nil
}

// CancelOrderInput represents the input for an owner cancelling their order
type CancelOrderInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

// CancelOrder cancels a pending order on behalf of its owner and returns the
// reserved quantities to stock in the same transaction.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, input CancelOrderInput) error {
	var order *domain.Order
	err := uc.inTx(ctx, "cancel_order", func(tx ports.OrderTx) error {
		locked, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if locked.UserID != input.UserID {
			return domain.ErrNotOrderOwner
		}
		if locked.Status != domain.StatusPending {
			return domain.NewNotPendingCancellation(locked.Status)
		}

		order = locked
		return uc.applyTransition(ctx, tx, locked, domain.StatusCancelled)
	})
	if err != nil {
		return err
	}

	uc.transitioned(ctx, order, domain.StatusPending)
	return nil
}

// applyTransition writes the status change and its stock side effects through
// tx. Releasing stock adds back exactly the per-product quantities that were
// reserved when the order was built.
func (uc *OrderUseCase) applyTransition(ctx context.Context, tx ports.OrderTx, order *domain.Order, to domain.Status) error {
	if to.ReleasesStock() {
		released := order.QuantitiesByProduct()
		for _, productID := range sortedIDs(released) {
			if err := tx.IncrementStock(ctx, productID, released[productID]); err != nil {
				return err
			}
		}
	}

	now := uc.opts.Now()
	if err := tx.UpdateOrderStatus(ctx, order.ID, order.Status, to, now); err != nil {
		return err
	}
	order.Status = to
	order.UpdatedAt = now
	return nil
}

func (uc *OrderUseCase) transitioned(ctx context.Context, order *domain.Order, from domain.Status) {
	uc.metrics.Transitioned(from, order.Status)
	uc.publishStatusChanged(ctx, order, from)

	uc.log.WithContext(ctx).Info("order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", order.Status.String()),
	)
}
