package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Stock is changed by admins here and
// by the order engine at checkout and cancellation.
type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate validates the product entity
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if len(p.Name) > 200 {
		return ErrNameLength
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if !p.Price.Equal(p.Price.Round(2)) {
		return ErrPricePrecision
	}
	if p.StockQuantity < 0 {
		return ErrNegativeStock
	}
	return nil
}

// NewProduct creates an active product with validation
func NewProduct(name, description string, price decimal.Decimal, stock int) (*Product, error) {
	now := time.Now().UTC()
	product := &Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(name),
		Description:   description,
		Price:         price,
		StockQuantity: stock,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}
