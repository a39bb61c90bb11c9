package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "DATABASE_URL", "DB_HOST", "DB_NAME", "DB_TIMEOUT",
		"ORDER_CACHE_TTL", "CHECKOUT_RATE_LIMIT", "KAFKA_BROKERS", "NOTIFY_WORKERS", "CORS_ORIGINS", "ORDER_STATUS_POLICY"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 5*time.Minute, cfg.OrderCacheTTL)
	assert.Equal(t, 20, cfg.CheckoutRateLimit)
	assert.Equal(t, time.Minute, cfg.CheckoutRateWindow)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "orders", cfg.KafkaTopicPrefix)
	assert.Equal(t, "permissive", cfg.OrderStatusPolicy)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, 256, cfg.NotifyQueueSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "store")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DB_TIMEOUT", "250ms")
	t.Setenv("NOTIFY_WORKERS", "-3")

	cfg := FromEnv()

	assert.Equal(t, "host=db user=shop password=secret dbname=store port=6543 sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.DBTimeout)
	assert.Equal(t, 4, cfg.NotifyWorkers)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreDriver: "memory", JWTSecret: "s", AdminAPIKey: "k"}
	require.NoError(t, cfg.Validate())

	cfg.StoreDriver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/store"
	assert.NoError(t, cfg.Validate())

	cfg.StoreDriver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = &Config{StoreDriver: "memory", AdminAPIKey: "k"}
	assert.Error(t, cfg.Validate())
}
