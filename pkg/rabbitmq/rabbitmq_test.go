package rabbitmq

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"go-storefront/pkg/logger"
)

func TestNewPublishing_CarriesTraceID(t *testing.T) {
	ctx := logger.WithTraceIDContext(context.Background(), "trace-9")
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	p := newPublishing(ctx, []byte(`{}`), now)

	assert.Equal(t, "application/json", p.ContentType)
	assert.Equal(t, amqp.Persistent, p.DeliveryMode)
	assert.Equal(t, "trace-9", p.CorrelationId)
	assert.Equal(t, now, p.Timestamp)
	assert.Equal(t, "trace-9", TraceIDFromHeaders(p.Headers))
}

func TestTraceIDFromHeaders_Missing(t *testing.T) {
	assert.Empty(t, TraceIDFromHeaders(nil))
	assert.Empty(t, TraceIDFromHeaders(amqp.Table{traceHeader: 42}))
}

func TestDiscard(t *testing.T) {
	base := fmt.Errorf("bad payload")
	err := fmt.Errorf("handler: %w", Discard(base))

	assert.True(t, IsDiscard(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsDiscard(base))
	assert.False(t, IsDiscard(nil))
}
