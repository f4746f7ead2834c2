package domain

import (
	"github.com/google/uuid"

	"go-storefront/pkg/errors"
)

// Domain-specific errors
var (
	ErrNameRequired   = errors.NewValidation("name is required", nil)
	ErrNameLength     = errors.NewValidation("name must be at most 200 characters", nil)
	ErrNegativePrice  = errors.NewValidation("price cannot be negative", nil)
	ErrPricePrecision = errors.NewValidation("price must have at most two decimal places", nil)
	ErrNegativeStock  = errors.NewValidation("stock quantity cannot be negative", nil)
)

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id uuid.UUID) error {
	return errors.NewNotFound("product", id)
}
