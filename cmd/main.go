package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_cart/checkout-api/internal/cache"
	"github.com/fjod/go_cart/checkout-api/internal/config"
	h "github.com/fjod/go_cart/checkout-api/internal/http"
	"github.com/fjod/go_cart/checkout-api/internal/payment"
	"github.com/fjod/go_cart/checkout-api/internal/publisher"
	"github.com/fjod/go_cart/checkout-api/internal/repository"
	"github.com/fjod/go_cart/checkout-api/internal/service"
	"github.com/fjod/go_cart/checkout-api/pkg/circuitbreaker"
	"github.com/fjod/go_cart/checkout-api/pkg/logger"
	"github.com/fjod/go_cart/checkout-api/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "checkout"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURL, cfg.MongoDBName)
	if err != nil {
		zl.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		zl.Fatal("Failed to create indexes", zap.Error(err))
	}
	zl.Info("Connected to MongoDB", zap.String("database", cfg.MongoDBName))

	customers := repository.NewMongoCustomerRepository(mongoDB)
	orders := repository.NewMongoOrderRepository(mongoDB, zl.Named("orders"))

	var sessionCache cache.SessionCache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zl.Warn("Redis ping failed, idempotent replay disabled", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			sessionCache = cache.NewRedisSessionCache(redisClient, cfg.IdempotencyTTL)
			zl.Info("Redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		}
	}

	stripeSessions := &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.StripeSecretKey}
	gateway := payment.NewStripeGateway(
		stripeSessions,
		payment.NewConfig(cfg.StoreURL, cfg.StripeCurrency, cfg.StripeShippingRateID, cfg.AllowedCountries),
		circuitbreaker.DefaultSettings("stripe-checkout"),
		zl,
	)

	checkoutService := service.NewCheckoutService(customers, orders, gateway, sessionCache, zl)
	historyService := service.NewOrderHistoryService(orders)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, serviceName)

	router := h.NewRouter(
		h.RouterConfig{RequestTimeout: cfg.RequestTimeout, MaxBodyBytes: cfg.MaxRequestBody},
		h.NewCheckoutHandler(checkoutService, serverMetrics, zl),
		h.NewOrdersHandler(historyService, zl),
		serverMetrics,
		reg,
		zl,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	pollerCtx, stopPoller := context.WithCancel(ctx)
	var pollerDone sync.WaitGroup
	var kafkaWriter *kafka.Writer
	if cfg.OutboxEnabled {
		kafkaWriter = publisher.NewKafkaWriter(cfg.KafkaOrdersTopic, cfg.KafkaBrokers...)
		poller := publisher.NewOutboxPoller(orders, kafkaWriter, zl.Named("outbox"))
		pollerDone.Add(1)
		go func() {
			defer pollerDone.Done()
			poller.Run(pollerCtx)
		}()
		zl.Info("Outbox poller started", zap.String("topic", cfg.KafkaOrdersTopic), zap.Strings("brokers", cfg.KafkaBrokers))
	}

	go func() {
		zl.Info("Checkout API starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	stopPoller()
	pollerDone.Wait()

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			zl.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zl.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		zl.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}

	zl.Info("server exited")
}
