package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "orders-service", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BrokerRabbitMQ, cfg.EventsBroker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.TxMaxAttempts)
	assert.Equal(t, 25*time.Millisecond, cfg.TxRetryDelay)
	assert.Equal(t, 30*time.Second, cfg.DBTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("EVENTS_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TX_MAX_ATTEMPTS", "5")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BrokerKafka, cfg.EventsBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5, cfg.TxMaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownBroker(t *testing.T) {
	cfg := &Config{EventsBroker: "nats", JWTSecret: "x", TxMaxAttempts: 1}
	assert.ErrorContains(t, cfg.Validate(), "EVENTS_BROKER")
}

func TestValidate_RejectsZeroAttempts(t *testing.T) {
	cfg := &Config{EventsBroker: BrokerNone, JWTSecret: "x", TxMaxAttempts: 0}
	assert.ErrorContains(t, cfg.Validate(), "TX_MAX_ATTEMPTS")
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "shop", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=shop sslmode=disable", cfg.DSN())
}
