package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	StoreURL        string        `envconfig:"ECOMMERCE_STORE_URL" required:"true"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxRequestBody  int64         `envconfig:"MAX_REQUEST_BODY_BYTES" default:"1048576"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	MongoURL    string `envconfig:"MONGODB_URL" default:"mongodb://localhost:27017"`
	MongoDBName string `envconfig:"MONGODB_DB_NAME" default:"storefront"`

	StripeSecretKey      string   `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeCurrency       string   `envconfig:"STRIPE_CURRENCY" default:"inr"`
	StripeShippingRateID string   `envconfig:"STRIPE_SHIPPING_RATE_ID" default:"shr_1Qi4doKrUjEv12FJxGaV6hvy"`
	AllowedCountries     []string `envconfig:"SHIPPING_ALLOWED_COUNTRIES" default:"US,CA,IN"`

	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"` // empty disables replay
	RedisPassword  string        `envconfig:"REDIS_PASSWORD" default:""`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	OutboxEnabled    bool     `envconfig:"OUTBOX_ENABLED" default:"true"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaOrdersTopic string   `envconfig:"KAFKA_ORDERS_TOPIC" default:"orders"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
