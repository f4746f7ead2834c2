package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderView is the read model returned to clients
type OrderView struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	OrderDate   time.Time
	Status      Status
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Lines       []LineView
}

// LineView is an order line with its product name resolved
type LineView struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}
