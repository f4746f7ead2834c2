package application

import (
	"context"

	"github.com/google/uuid"

	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/errors"
)

// GetOrderInput represents the input for getting an order
type GetOrderInput struct {
	OrderID     uuid.UUID
	RequesterID uuid.UUID
	IsAdmin     bool
}

// GetOrder returns an order view. Non-admins only see their own orders;
// anyone else's order is reported as not found.
func (uc *OrderUseCase) GetOrder(ctx context.Context, input GetOrderInput) (*domain.OrderView, error) {
	var owner *uuid.UUID
	if !input.IsAdmin {
		if input.RequesterID == uuid.Nil {
			return nil, domain.NewOrderNotFound(input.OrderID)
		}
		owner = &input.RequesterID
	}

	view, err := uc.store.FindOrderView(ctx, input.OrderID, owner)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, domain.NewOrderNotFound(input.OrderID)
		}
		return nil, err
	}
	return view, nil
}

// ListUserOrders returns every order of userID, newest first
func (uc *OrderUseCase) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.OrderView, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUserIDRequired
	}
	return uc.store.ListOrderViews(ctx, userID)
}
