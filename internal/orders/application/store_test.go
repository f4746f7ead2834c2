package application

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/errors"
)

// idempotencyKey scopes a client key to the user who sent it
type idempotencyKey struct {
	userID uuid.UUID
	key    string
}

// memStore is an in-memory OrderStore. Transactions are serialized by mu,
// standing in for row locks, and roll back by restoring a snapshot.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.ProductStock
	orders   map[uuid.UUID]*domain.Order
	keys     map[idempotencyKey]uuid.UUID

	// failures are returned by the next WithinTx calls before fn runs
	failures []error
	txCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]domain.ProductStock),
		orders:   make(map[uuid.UUID]*domain.Order),
		keys:     make(map[idempotencyKey]uuid.UUID),
	}
}

func (s *memStore) addProduct(name, price string, stock int) domain.ProductStock {
	p := domain.ProductStock{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
	return p
}

func (s *memStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memStore) order(id uuid.UUID) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id])
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx ports.OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCalls++
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}

	products := make(map[uuid.UUID]domain.ProductStock, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}
	orders := make(map[uuid.UUID]*domain.Order, len(s.orders))
	for id, o := range s.orders {
		orders[id] = cloneOrder(o)
	}
	keys := make(map[idempotencyKey]uuid.UUID, len(s.keys))
	for k, v := range s.keys {
		keys[k] = v
	}

	if err := fn(&memTx{s: s}); err != nil {
		s.products, s.orders, s.keys = products, orders, keys
		return err
	}
	return nil
}

func (s *memStore) FindOrderView(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || (owner != nil && order.UserID != *owner) {
		return nil, domain.NewOrderNotFound(id)
	}
	return s.view(order), nil
}

func (s *memStore) ListOrderViews(ctx context.Context, userID uuid.UUID) ([]*domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := []*domain.OrderView{}
	for _, order := range s.orders {
		if order.UserID == userID {
			views = append(views, s.view(order))
		}
	}
	slices.SortFunc(views, func(a, b *domain.OrderView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return views, nil
}

func (s *memStore) FindOrderIDByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.keys[idempotencyKey{userID: userID, key: key}]
	if !ok {
		return uuid.Nil, errors.NewNotFound("order", key)
	}
	return id, nil
}

func (s *memStore) view(order *domain.Order) *domain.OrderView {
	view := &domain.OrderView{
		OrderID:     order.ID,
		UserID:      order.UserID,
		OrderDate:   order.OrderDate,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, domain.LineView{
			ProductID:   line.ProductID,
			ProductName: s.products[line.ProductID].Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}
	return view
}

// memTx operates on the store's maps; the caller already holds s.mu
type memTx struct {
	s *memStore
}

func (tx *memTx) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductStock, error) {
	out := make(map[uuid.UUID]domain.ProductStock, len(ids))
	for _, id := range ids {
		if p, ok := tx.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (tx *memTx) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	p, ok := tx.s.products[productID]
	if !ok {
		return domain.NewProductNotFound(productID)
	}
	if p.StockQuantity < quantity {
		return domain.NewInsufficientStock(productID, quantity, p.StockQuantity)
	}
	p.StockQuantity -= quantity
	tx.s.products[productID] = p
	return nil
}

func (tx *memTx) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	p, ok := tx.s.products[productID]
	if !ok {
		return domain.NewProductNotFound(productID)
	}
	p.StockQuantity += quantity
	tx.s.products[productID] = p
	return nil
}

func (tx *memTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	if order.IdempotencyKey != "" {
		k := idempotencyKey{userID: order.UserID, key: order.IdempotencyKey}
		if _, taken := tx.s.keys[k]; taken {
			return errors.NewConflict("idempotency key already used")
		}
		tx.s.keys[k] = order.ID
	}
	tx.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (tx *memTx) LockOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := tx.s.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return cloneOrder(order), nil
}

func (tx *memTx) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, at time.Time) error {
	order, ok := tx.s.orders[id]
	if !ok {
		return domain.NewOrderNotFound(id)
	}
	if order.Status != from {
		return errors.NewTransient("order status changed concurrently", nil)
	}
	order.Status = to
	order.UpdatedAt = at
	return nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = slices.Clone(o.Lines)
	return &c
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu      sync.Mutex
	created []uuid.UUID
	changed []string
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, order.ID)
	return nil
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, string(from)+"->"+string(order.Status))
	return nil
}

// countingMetrics records calls
type countingMetrics struct {
	mu           sync.Mutex
	created      int
	rejected     int
	retries      int
	transitioned []string
}

func (m *countingMetrics) OrderCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) StockRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected++
}

func (m *countingMetrics) Transitioned(from, to domain.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitioned = append(m.transitioned, string(from)+"->"+string(to))
}

func (m *countingMetrics) TxRetried(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}
