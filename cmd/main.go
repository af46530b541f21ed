package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ray-remotestate/pizzeria/cache"
	"github.com/ray-remotestate/pizzeria/cart"
	"github.com/ray-remotestate/pizzeria/catalog"
	"github.com/ray-remotestate/pizzeria/chat"
	"github.com/ray-remotestate/pizzeria/checkout"
	"github.com/ray-remotestate/pizzeria/config"
	"github.com/ray-remotestate/pizzeria/database"
	"github.com/ray-remotestate/pizzeria/database/dbhelper"
	"github.com/ray-remotestate/pizzeria/events"
	"github.com/ray-remotestate/pizzeria/handlers"
	"github.com/ray-remotestate/pizzeria/server"
)

const shutdownTimeOut = 10 * time.Second

func setupLogging(cfg config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	setupLogging(cfg)

	if err := database.ConnectAndMigrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Info("migration is successful")

	if cfg.SeedAdmin() {
		created, err := dbhelper.EnsureAdmin(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logrus.Panicf("failed to seed admin, error: %v", err)
		}
		if created {
			logrus.WithField("email", cfg.AdminEmail).Info("admin account created")
		}
	}

	var (
		rdb      *redis.Client
		catCache catalog.Cache
		carts    cart.Store = cart.NewMemoryStore()
		idem     checkout.IdempotencyStore
	)
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			logrus.Panicf("failed to connect to redis, error: %v", err)
		}
		catCache = cache.NewCatalogCache(rdb, cfg.CatalogCacheTTL)
		carts = cache.NewCartStore(rdb, cfg.CartTTL)
		idem = cache.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
		logrus.Info("redis connected")
	} else {
		logrus.Warn("REDIS_ADDR not set, carts are kept in memory and idempotency keys are ignored")
	}

	var (
		publisher events.Publisher = events.Nop{}
		amqpConn  *amqp.Connection
	)
	if cfg.AMQPURL != "" {
		amqpConn, err = amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logrus.Panicf("failed to connect to rabbitmq, error: %v", err)
		}
		ch, err := amqpConn.Channel()
		if err != nil {
			logrus.Panicf("failed to open rabbitmq channel, error: %v", err)
		}
		rp, err := events.NewRabbitPublisher(ch)
		if err != nil {
			logrus.Panicf("failed to set up order events, error: %v", err)
		}
		publisher = rp
		logrus.Info("rabbitmq connected")
	}

	catalogSvc := catalog.NewService(dbhelper.NewCatalogRepo(database.Pizzeria), catCache)
	// migrations may have changed the menu
	if err := catalogSvc.Refresh(context.Background()); err != nil {
		logrus.WithError(err).Warn("failed to drop cached catalog")
	}
	checkoutSvc := checkout.NewService(
		dbhelper.NewOrderRepo(database.Pizzeria),
		catalogSvc,
		publisher,
		idem,
		checkout.Fees{DeliveryFee: cfg.DeliveryFeeCents, FreeDeliveryThreshold: cfg.FreeDeliveryThresholdCents},
	)

	h := &handlers.Handler{
		Catalog:  catalogSvc,
		Carts:    carts,
		Checkout: checkoutSvc,
	}
	if cfg.LLMAPIKey != "" {
		opts := []openai.Option{openai.WithToken(cfg.LLMAPIKey), openai.WithModel(cfg.LLMModel)}
		if cfg.LLMBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLMBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			logrus.Panicf("failed to set up chat model, error: %v", err)
		}
		h.Assistant = chat.NewAssistant(llm, catalogSvc)
	} else {
		logrus.Warn("LLM_API_KEY not set, chat is disabled")
	}

	srv := server.SetupRoutes(h)
	go func() {
		logrus.Infof("server listening on %s", cfg.Port)
		if err := srv.Run(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Panicf("failed to run server, error: %v", err)
		}
	}()

	<-done

	logrus.Info("shutting down...")
	if err := srv.Shutdown(shutdownTimeOut); err != nil {
		logrus.WithError(err).Error("failed to shut down server gracefully")
	}
	if amqpConn != nil {
		if err := amqpConn.Close(); err != nil {
			logrus.WithError(err).Error("failed to close rabbitmq connection")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logrus.WithError(err).Error("failed to close redis connection")
		}
	}
	if err := database.ShutdownDatabase(); err != nil {
		logrus.WithError(err).Error("failed to close database connection!")
	}

	logrus.Info("system is shut ..zzz")
}
