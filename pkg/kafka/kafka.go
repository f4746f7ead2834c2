package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-storefront/pkg/events"
	"go-storefront/pkg/logger"
)

const (
	headerTraceID    = "x-trace-id"
	headerRoutingKey = "x-routing-key"
)

// Client holds the broker list shared by writers
type Client struct {
	Brokers []string
}

// NewClient trims empty broker entries
func NewClient(brokers []string) *Client {
	cleaned := make([]string, 0, len(brokers))
	for _, b := range brokers {
		b = strings.TrimSpace(b)
		if b != "" {
			cleaned = append(cleaned, b)
		}
	}
	return &Client{Brokers: cleaned}
}

// Enabled reports whether any broker is configured
func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewWriter returns a writer that hashes message keys onto partitions
func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Publisher writes JSON messages to one topic
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewPublisher creates a publisher for topic
func NewPublisher(client *Client, topic string, log *logger.Logger) (*Publisher, error) {
	if !client.Enabled() {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	return &Publisher{writer: client.NewWriter(topic), log: log}, nil
}

// Publish writes message keyed by its partition key. The routing key travels
// as a header so consumers can tell event types apart.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	msg, err := newMessage(ctx, routingKey, message, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("topic", p.writer.Topic),
		zap.String("routing_key", routingKey),
	)
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(ctx context.Context, routingKey string, message interface{}, now time.Time) (kafka.Message, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	key := routingKey
	if keyed, ok := message.(events.Keyed); ok {
		key = keyed.PartitionKey()
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  now,
		Headers: []kafka.Header{
			{Key: headerRoutingKey, Value: []byte(routingKey)},
			{Key: headerTraceID, Value: []byte(logger.GetTraceID(ctx))},
		},
	}, nil
}
