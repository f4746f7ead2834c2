package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

// Options tunes transaction retries and the clock
type Options struct {
	// MaxAttempts bounds how often a transaction aborted by the store is run
	MaxAttempts int
	// RetryDelay is multiplied by the attempt number between retries
	RetryDelay time.Duration
	// Now stamps new orders; defaults to UTC wall time
	Now func() time.Time
}

// OrderUseCase handles order business logic: building orders at checkout,
// moving them through their lifecycle and serving reads.
type OrderUseCase struct {
	store     ports.OrderStore
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
	opts      Options
}

// NewOrderUseCase creates a new order use case. publisher and metrics may be nil.
func NewOrderUseCase(
	store ports.OrderStore,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	log *logger.Logger,
	opts Options,
) *OrderUseCase {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &OrderUseCase{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		opts:      opts,
	}
}

// inTx runs fn in a store transaction, retrying aborts the store reports as
// transient. Every attempt starts from a fresh transaction.
func (uc *OrderUseCase) inTx(ctx context.Context, operation string, fn func(tx ports.OrderTx) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = uc.store.WithinTx(ctx, fn)
		if err == nil || !errors.Is(err, errors.CodeTransient) || attempt >= uc.opts.MaxAttempts {
			return err
		}

		uc.metrics.TxRetried(operation)
		uc.log.WithContext(ctx).Warn("retrying aborted transaction",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return errors.NewTransient(operation+" interrupted while retrying", ctx.Err())
		case <-time.After(uc.opts.RetryDelay * time.Duration(attempt)):
		}
	}
}

func (uc *OrderUseCase) publishStatusChanged(ctx context.Context, order *domain.Order, from domain.Status) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishOrderStatusChanged(ctx, order, from); err != nil {
		uc.log.WithContext(ctx).Error("failed to publish order status changed event",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
	}
}

type nopMetrics struct{}

func (nopMetrics) OrderCreated()                   {}
func (nopMetrics) StockRejected()                  {}
func (nopMetrics) Transitioned(_, _ domain.Status) {}
func (nopMetrics) TxRetried(string)                {}
