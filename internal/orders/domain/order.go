package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the aggregate created at checkout. Lines reference products by ID
// only; product names are joined in by the query side.
type Order struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	OrderDate      time.Time
	Status         Status
	TotalAmount    decimal.Decimal
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []OrderLine
}

// OrderLine is one product and quantity of an order with the unit price
// captured when the order was placed.
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Position  int
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineRequest is a requested (product, quantity) pair from a cart
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// ProductStock is the slice of a catalog product the order engine reads and
// writes: price to snapshot, stock to reserve, and whether it can be sold.
type ProductStock struct {
	ID            uuid.UUID
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	IsActive      bool
}

// NewOrder starts a pending order for userID stamped at now
func NewOrder(userID uuid.UUID, now time.Time) (*Order, error) {
	if userID == uuid.Nil {
		return nil, ErrUserIDRequired
	}
	return &Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderDate:   now,
		Status:      StatusPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddLine appends a line priced at the product's current price and adds its
// amount to the running total. Stock is the caller's concern.
func (o *Order) AddLine(product ProductStock, quantity int) (OrderLine, error) {
	if !product.IsActive {
		return OrderLine{}, NewProductInactive(product.ID)
	}
	if quantity <= 0 {
		return OrderLine{}, NewInvalidQuantity(product.ID, quantity)
	}
	if product.Price.IsNegative() {
		return OrderLine{}, NewNegativePrice(product.ID)
	}

	line := OrderLine{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: product.ID,
		Position:  len(o.Lines),
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	o.Lines = append(o.Lines, line)
	o.TotalAmount = o.TotalAmount.Add(line.Amount())
	return line, nil
}

// Amount is unitPrice × quantity
func (l OrderLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal recomputes the sum of line amounts
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Amount())
	}
	return total
}

// Reconciles reports whether the stored total equals the sum of line amounts
func (o *Order) Reconciles() bool {
	return o.TotalAmount.Equal(o.LinesTotal())
}

// QuantitiesByProduct sums line quantities per product, the amount reserved at
// creation and released on cancellation.
func (o *Order) QuantitiesByProduct() map[uuid.UUID]int {
	quantities := make(map[uuid.UUID]int, len(o.Lines))
	for _, line := range o.Lines {
		quantities[line.ProductID] += line.Quantity
	}
	return quantities
}

// ValidateLineRequests checks a cart before any store access
func ValidateLineRequests(lines []LineRequest) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return ErrProductIDRequired
		}
		if line.Quantity <= 0 {
			return NewInvalidQuantity(line.ProductID, line.Quantity)
		}
	}
	return nil
}
