package adapters

import (
	"github.com/prometheus/client_golang/prometheus"

	"go-storefront/internal/orders/domain"
	"go-storefront/pkg/metrics"
)

// OrderMetrics implements ports.Metrics
type OrderMetrics struct {
	created     prometheus.Counter
	rejections  prometheus.Counter
	transitions *prometheus.CounterVec
	retries     *prometheus.CounterVec
}

// NewOrderMetrics registers the order engine metrics on reg
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders committed at checkout.",
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "orders",
			Name:      "stock_rejections_total",
			Help:      "Checkouts rejected for insufficient stock.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Committed order status transitions.",
		}, []string{"from", "to"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "orders",
			Name:      "tx_retries_total",
			Help:      "Transactions retried after a transient abort.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.created, m.rejections, m.transitions, m.retries)
	return m
}

// OrderCreated counts a committed order
func (m *OrderMetrics) OrderCreated() { m.created.Inc() }

// StockRejected counts a checkout refused for stock
func (m *OrderMetrics) StockRejected() { m.rejections.Inc() }

// Transitioned counts a committed status change
func (m *OrderMetrics) Transitioned(from, to domain.Status) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// TxRetried counts one retry of operation
func (m *OrderMetrics) TxRetried(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}
