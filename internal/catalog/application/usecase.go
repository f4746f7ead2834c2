package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-storefront/internal/catalog/domain"
	"go-storefront/internal/catalog/ports"
	"go-storefront/pkg/logger"
)

// ProductUseCase handles product business logic
type ProductUseCase struct {
	repo ports.ProductRepository
	log  *logger.Logger
}

// NewProductUseCase creates a new product use case
func NewProductUseCase(repo ports.ProductRepository, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{
		repo: repo,
		log:  log,
	}
}

// CreateProductInput represents the input for creating a product
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
}

// CreateProduct creates a new product
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(input.Name, input.Description, input.Price, input.StockQuantity)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int("stock_quantity", product.StockQuantity),
	)

	return product, nil
}

// GetProduct retrieves a product by ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

// SetStock sets the on-hand quantity, e.g. after a stock count
func (uc *ProductUseCase) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity < 0 {
		return domain.ErrNegativeStock
	}
	if err := uc.repo.SetStock(ctx, id, quantity); err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("product stock set",
		zap.String("product_id", id.String()),
		zap.Int("stock_quantity", quantity),
	)
	return nil
}

// SetActive toggles whether the product can be ordered
func (uc *ProductUseCase) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := uc.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("product availability changed",
		zap.String("product_id", id.String()),
		zap.Bool("is_active", active),
	)
	return nil
}
