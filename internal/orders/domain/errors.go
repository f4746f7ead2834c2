package domain

import (
	"github.com/google/uuid"

	"go-storefront/pkg/errors"
)

// Domain-specific errors
var (
	ErrUserIDRequired    = errors.NewValidation("user_id is required", nil)
	ErrProductIDRequired = errors.NewValidation("product_id is required", nil)
	ErrEmptyOrder        = errors.NewValidation("order must contain at least one item", nil)
	ErrNotOrderOwner     = errors.NewIllegalCancellation("order can only be cancelled by its owner")
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uuid.UUID) error {
	return errors.NewNotFound("order", id)
}

// NewProductNotFound creates a not found error for a product referenced by a cart line
func NewProductNotFound(id uuid.UUID) error {
	return errors.NewNotFound("product", id)
}

// NewProductInactive rejects a line for a product withdrawn from sale
func NewProductInactive(id uuid.UUID) error {
	return errors.NewValidation("product is not available for ordering", map[string]interface{}{
		"product_id": id,
	})
}

// NewInvalidQuantity rejects a non-positive line quantity
func NewInvalidQuantity(productID uuid.UUID, quantity int) error {
	return errors.NewValidation("quantity must be greater than 0", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
}

// NewNegativePrice rejects a product whose catalog price is below zero
func NewNegativePrice(productID uuid.UUID) error {
	return errors.NewValidation("product price cannot be negative", map[string]interface{}{
		"product_id": productID,
	})
}

// NewInsufficientStock rejects a line asking for more than is on hand
func NewInsufficientStock(productID uuid.UUID, requested, available int) error {
	return errors.NewValidation("insufficient stock", map[string]interface{}{
		"product_id": productID,
		"requested":  requested,
		"available":  available,
	})
}

// NewInvalidTransition rejects a status change missing from the transition table
func NewInvalidTransition(from, to Status) error {
	return errors.NewInvalidTransition(string(from), string(to))
}

// NewNotPendingCancellation rejects cancelling an order that already left Pending
func NewNotPendingCancellation(status Status) error {
	return errors.NewIllegalCancellation("only pending orders can be cancelled, order is " + string(status))
}
