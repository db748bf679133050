package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ECOMMERCE_STORE_URL", "http://localhost:3001")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3001", cfg.StoreURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBody)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "inr", cfg.StripeCurrency)
	assert.Equal(t, "shr_1Qi4doKrUjEv12FJxGaV6hvy", cfg.StripeShippingRateID)
	assert.Equal(t, []string{"US", "CA", "IN"}, cfg.AllowedCountries)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.OutboxEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "orders", cfg.KafkaOrdersTopic)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ECOMMERCE_STORE_URL", "https://shop.example.com")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("SHIPPING_ALLOWED_COUNTRIES", "DE,FR")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("OUTBOX_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"DE", "FR"}, cfg.AllowedCountries)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.OutboxEnabled)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_MissingRequired(t *testing.T) {
	// Setenv restores the previous values on cleanup.
	t.Setenv("ECOMMERCE_STORE_URL", "")
	t.Setenv("STRIPE_SECRET_KEY", "")
	require.NoError(t, os.Unsetenv("ECOMMERCE_STORE_URL"))
	require.NoError(t, os.Unsetenv("STRIPE_SECRET_KEY"))

	_, err := Load()
	assert.Error(t, err)
}
