package ports

import (
	"context"

	"github.com/google/uuid"

	"go-storefront/internal/catalog/domain"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// SetStock overwrites the stock quantity
	SetStock(ctx context.Context, id uuid.UUID, quantity int) error

	// SetActive withdraws a product from sale or puts it back
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
