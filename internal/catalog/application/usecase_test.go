package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-storefront/internal/catalog/domain"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	return product, nil
}

func (m *MockProductRepository) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	product, ok := m.products[id]
	if !ok {
		return domain.NewProductNotFound(id)
	}
	product.StockQuantity = quantity
	return nil
}

func (m *MockProductRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	product, ok := m.products[id]
	if !ok {
		return domain.NewProductNotFound(id)
	}
	product.IsActive = active
	return nil
}

func TestCreateProduct_Success(t *testing.T) {
	// Arrange
	repo := NewMockProductRepository()
	useCase := NewProductUseCase(repo, logger.NewNop())

	// Act
	product, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Desk lamp",
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: 12,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.products[product.ID]; !ok {
		t.Error("expected product to be stored")
	}
	if !product.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("expected price 19.99, got %s", product.Price)
	}
}

func TestCreateProduct_Invalid(t *testing.T) {
	repo := NewMockProductRepository()
	useCase := NewProductUseCase(repo, logger.NewNop())

	_, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Desk lamp",
		Price: decimal.RequireFromString("-3"),
	})

	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(repo.products) != 0 {
		t.Errorf("expected nothing stored, got %d products", len(repo.products))
	}
}

func TestSetStock(t *testing.T) {
	repo := NewMockProductRepository()
	useCase := NewProductUseCase(repo, logger.NewNop())
	product, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Desk lamp",
		Price:         decimal.NewFromInt(5),
		StockQuantity: 1,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := useCase.SetStock(context.Background(), product.ID, 40); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.products[product.ID].StockQuantity != 40 {
		t.Errorf("expected stock 40, got %d", repo.products[product.ID].StockQuantity)
	}

	if err := useCase.SetStock(context.Background(), product.ID, -1); !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := useCase.SetStock(context.Background(), uuid.New(), 1); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	repo := NewMockProductRepository()
	useCase := NewProductUseCase(repo, logger.NewNop())
	product, _ := useCase.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Desk lamp",
		Price: decimal.NewFromInt(5),
	})

	if err := useCase.SetActive(context.Background(), product.ID, false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.products[product.ID].IsActive {
		t.Error("expected product to be inactive")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	useCase := NewProductUseCase(NewMockProductRepository(), logger.NewNop())

	_, err := useCase.GetProduct(context.Background(), uuid.New())

	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}
