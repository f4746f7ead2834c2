package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/db"
	apperrors "go-storefront/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null;uniqueIndex:idx_orders_user_idempotency_key,priority:1"`
	OrderDate      time.Time       `gorm:"not null"`
	Status         string          `gorm:"size:20;not null;default:'Pending'"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IdempotencyKey *string         `gorm:"size:128;uniqueIndex:idx_orders_user_idempotency_key,priority:2"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the GORM model for order lines
type OrderLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position  int             `gorm:"not null"`
	Quantity  int             `gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// productRow is the part of the catalog's products table the order engine
// touches. The catalog owns and migrates the table.
type productRow struct {
	ID            uuid.UUID
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	IsActive      bool
}

func (productRow) TableName() string {
	return "products"
}

// lineViewRow is a line joined with its product name
type lineViewRow struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// PostgresOrderStore implements ports.OrderStore using PostgreSQL
type PostgresOrderStore struct {
	db *gorm.DB
}

// NewPostgresOrderStore creates a new PostgreSQL order store
func NewPostgresOrderStore(db *gorm.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// Migrate runs auto-migration for the order models
func (s *PostgresOrderStore) Migrate() error {
	return s.db.AutoMigrate(&OrderModel{}, &OrderLineModel{})
}

// WithinTx runs fn in one database transaction
func (s *PostgresOrderStore) WithinTx(ctx context.Context, fn func(tx ports.OrderTx) error) error {
	err := db.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		return fn(&postgresOrderTx{db: tx})
	})
	return storeError("order transaction failed", err)
}

// FindOrderView retrieves an order with product names, optionally scoped to an owner
func (s *PostgresOrderStore) FindOrderView(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*domain.OrderView, error) {
	query := s.db.WithContext(ctx).Where("id = ?", id)
	if owner != nil {
		query = query.Where("user_id = ?", *owner)
	}

	var model OrderModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, storeError("failed to get order", err)
	}

	lines, err := s.lineViews(ctx, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return toView(&model, lines[model.ID]), nil
}

// ListOrderViews retrieves all orders of a user, newest first
func (s *PostgresOrderStore) ListOrderViews(ctx context.Context, userID uuid.UUID) ([]*domain.OrderView, error) {
	var models []OrderModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, storeError("failed to list orders", err)
	}
	if len(models) == 0 {
		return []*domain.OrderView{}, nil
	}

	ids := make([]uuid.UUID, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	lines, err := s.lineViews(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.OrderView, len(models))
	for i := range models {
		views[i] = toView(&models[i], lines[models[i].ID])
	}
	return views, nil
}

// FindOrderIDByIdempotencyKey returns the order userID created with key
func (s *PostgresOrderStore) FindOrderIDByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, error) {
	var model OrderModel
	err := s.db.WithContext(ctx).Select("id").Where("user_id = ? AND idempotency_key = ?", userID, key).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperrors.NewNotFound("order", key)
		}
		return uuid.Nil, storeError("failed to look up idempotency key", err)
	}
	return model.ID, nil
}

func (s *PostgresOrderStore) lineViews(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.LineView, error) {
	var rows []lineViewRow
	err := s.db.WithContext(ctx).
		Table("order_lines AS l").
		Select("l.order_id, l.product_id, COALESCE(p.name, '') AS product_name, l.quantity, l.unit_price").
		Joins("LEFT JOIN products AS p ON p.id = l.product_id").
		Where("l.order_id IN ?", orderIDs).
		Order("l.order_id").
		Order("l.position").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("failed to load order lines", err)
	}

	lines := make(map[uuid.UUID][]domain.LineView, len(orderIDs))
	for _, row := range rows {
		lines[row.OrderID] = append(lines[row.OrderID], domain.LineView{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
		})
	}
	return lines, nil
}

// postgresOrderTx implements ports.OrderTx on a gorm transaction
type postgresOrderTx struct {
	db *gorm.DB
}

// LockProducts selects the products FOR UPDATE in primary key order so
// concurrent checkouts always queue on rows in the same sequence.
func (t *postgresOrderTx) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductStock, error) {
	var rows []productRow
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("failed to lock products", err)
	}

	products := make(map[uuid.UUID]domain.ProductStock, len(rows))
	for _, row := range rows {
		products[row.ID] = domain.ProductStock{
			ID:            row.ID,
			Name:          row.Name,
			Price:         row.Price,
			StockQuantity: row.StockQuantity,
			IsActive:      row.IsActive,
		}
	}
	return products, nil
}

// DecrementStock is a conditional update: it only matches while enough stock remains
func (t *postgresOrderTx) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := t.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return storeError("failed to reserve stock", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var row productRow
	if err := t.db.WithContext(ctx).Where("id = ?", productID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewProductNotFound(productID)
		}
		return storeError("failed to read stock", err)
	}
	return domain.NewInsufficientStock(productID, quantity, row.StockQuantity)
}

// IncrementStock returns quantity units to a product
func (t *postgresOrderTx) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := t.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return storeError("failed to restore stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(productID)
	}
	return nil
}

// InsertOrder writes the order row and its lines
func (t *postgresOrderTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	model := toModel(order)
	if err := t.db.WithContext(ctx).Create(model).Error; err != nil {
		return storeError("failed to create order", err)
	}

	if len(order.Lines) == 0 {
		return nil
	}
	lines := make([]OrderLineModel, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = toLineModel(line)
	}
	if err := t.db.WithContext(ctx).Create(&lines).Error; err != nil {
		return storeError("failed to create order lines", err)
	}
	return nil
}

// LockOrder selects the order FOR UPDATE together with its lines
func (t *postgresOrderTx) LockOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var model OrderModel
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, storeError("failed to lock order", err)
	}

	var lines []OrderLineModel
	if err := t.db.WithContext(ctx).Where("order_id = ?", id).Order("position").Find(&lines).Error; err != nil {
		return nil, storeError("failed to load order lines", err)
	}
	return toDomain(&model, lines), nil
}

// UpdateOrderStatus compares and sets the status
func (t *postgresOrderTx) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, at time.Time) error {
	result := t.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		UpdateColumns(map[string]interface{}{
			"status":     string(to),
			"updated_at": at,
		})
	if result.Error != nil {
		return storeError("failed to update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewTransient("order status changed concurrently", nil)
	}
	return nil
}

// storeError classifies a driver error. Errors that already carry an
// application code pass through unchanged.
func storeError(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case db.IsTransient(err):
		return apperrors.NewTransient(message, err)
	case db.IsUniqueViolation(err):
		return apperrors.NewConflict(message + ": duplicate key")
	}
	return apperrors.NewInternal(message, err)
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) *OrderModel {
	model := &OrderModel{
		ID:          order.ID,
		UserID:      order.UserID,
		OrderDate:   order.OrderDate,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.IdempotencyKey != "" {
		key := order.IdempotencyKey
		model.IdempotencyKey = &key
	}
	return model
}

func toLineModel(line domain.OrderLine) OrderLineModel {
	return OrderLineModel{
		ID:        line.ID,
		OrderID:   line.OrderID,
		ProductID: line.ProductID,
		Position:  line.Position,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
	}
}

// toDomain converts GORM models to a domain entity
func toDomain(model *OrderModel, lines []OrderLineModel) *domain.Order {
	order := &domain.Order{
		ID:          model.ID,
		UserID:      model.UserID,
		OrderDate:   model.OrderDate,
		Status:      domain.Status(model.Status),
		TotalAmount: model.TotalAmount,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Lines:       make([]domain.OrderLine, len(lines)),
	}
	if model.IdempotencyKey != nil {
		order.IdempotencyKey = *model.IdempotencyKey
	}
	for i, line := range lines {
		order.Lines[i] = domain.OrderLine{
			ID:        line.ID,
			OrderID:   line.OrderID,
			ProductID: line.ProductID,
			Position:  line.Position,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return order
}

func toView(model *OrderModel, lines []domain.LineView) *domain.OrderView {
	if lines == nil {
		lines = []domain.LineView{}
	}
	return &domain.OrderView{
		OrderID:     model.ID,
		UserID:      model.UserID,
		OrderDate:   model.OrderDate,
		Status:      domain.Status(model.Status),
		TotalAmount: model.TotalAmount,
		CreatedAt:   model.CreatedAt,
		Lines:       lines,
	}
}
