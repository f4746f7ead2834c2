package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"go-storefront/pkg/logger"
)

const traceHeader = "x-trace-id"

// Connection manages a RabbitMQ connection and its channel
type Connection struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewConnection dials RabbitMQ and opens a channel
func NewConnection(url string, log *logger.Logger) (*Connection, error) {
	c := &Connection{url: url, log: log}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	c.log.Info("connected to RabbitMQ")
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// DeclareExchange declares a durable topic exchange
func DeclareExchange(ch *amqp.Channel, name string) error {
	err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}
	return nil
}

// Publisher publishes JSON messages to one exchange
type Publisher struct {
	conn     *Connection
	exchange string
	log      *logger.Logger
}

// NewPublisher declares the exchange and returns a publisher for it
func NewPublisher(conn *Connection, exchange string, log *logger.Logger) (*Publisher, error) {
	if err := DeclareExchange(conn.Channel(), exchange); err != nil {
		return nil, err
	}
	return &Publisher{
		conn:     conn,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish marshals message and publishes it persistently
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.conn.Channel().PublishWithContext(
		ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		newPublishing(ctx, body, time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
	)
	return nil
}

func newPublishing(ctx context.Context, body []byte, now time.Time) amqp.Publishing {
	traceID := logger.GetTraceID(ctx)
	return amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     now,
		CorrelationId: traceID,
		Headers: amqp.Table{
			traceHeader: traceID,
		},
	}
}

// Binding routes one routing key of an exchange into a queue
type Binding struct {
	Exchange   string
	RoutingKey string
}

// Consumer consumes messages from one queue
type Consumer struct {
	conn       *Connection
	queue      string
	bindings   []Binding
	retryDelay time.Duration
	log        *logger.Logger
}

// NewConsumer declares the queue with a dead-letter exchange, declares every
// bound exchange and binds the queue to them
func NewConsumer(conn *Connection, queue string, bindings []Binding, log *logger.Logger) (*Consumer, error) {
	ch := conn.Channel()

	dlx := queue + ".dlx"
	if err := DeclareExchange(ch, dlx); err != nil {
		return nil, err
	}

	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-dead-letter-exchange": dlx,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, b := range bindings {
		if err := DeclareExchange(ch, b.Exchange); err != nil {
			return nil, err
		}
		if err := ch.QueueBind(queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return &Consumer{
		conn:       conn,
		queue:      queue,
		bindings:   bindings,
		retryDelay: time.Second,
		log:        log,
	}, nil
}

// MessageHandler handles one delivery. Returning an error requeues the
// message unless the error is wrapped with Discard.
type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

type discardError struct{ err error }

func (e *discardError) Error() string { return e.err.Error() }
func (e *discardError) Unwrap() error { return e.err }

// Discard marks err as permanent: the message is rejected to the dead-letter
// exchange instead of being redelivered
func Discard(err error) error {
	return &discardError{err: err}
}

// IsDiscard reports whether err was wrapped with Discard
func IsDiscard(err error) bool {
	var d *discardError
	return errors.As(err, &d)
}

// Consume starts a goroutine delivering messages to handler until ctx is done
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	msgs, err := c.conn.Channel().Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.deliver(ctx, msg, handler)
			}
		}
	}()

	c.log.Info("consumer started",
		zap.String("queue", c.queue),
		zap.Int("bindings", len(c.bindings)),
	)
	return nil
}

func (c *Consumer) deliver(ctx context.Context, msg amqp.Delivery, handler MessageHandler) {
	msgCtx := logger.WithTraceIDContext(ctx, TraceIDFromHeaders(msg.Headers))
	log := c.log.WithContext(msgCtx)

	log.Debug("message received",
		zap.String("queue", c.queue),
		zap.String("routing_key", msg.RoutingKey),
	)

	err := handler(msgCtx, msg.RoutingKey, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case IsDiscard(err):
		log.Error("discarding message", zap.Error(err), zap.String("queue", c.queue))
		msg.Nack(false, false)
	default:
		log.Error("failed to handle message", zap.Error(err), zap.String("queue", c.queue))
		select {
		case <-ctx.Done():
		case <-time.After(c.retryDelay):
		}
		msg.Nack(false, true)
	}
}

// TraceIDFromHeaders extracts the trace id set by Publish
func TraceIDFromHeaders(headers amqp.Table) string {
	if tid, ok := headers[traceHeader].(string); ok {
		return tid
	}
	return ""
}
