package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/inventory"
	"github.com/junaidrashid-git/storefront-api/lifecycle"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/notify"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/junaidrashid-git/storefront-api/store/memory"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("starting application", zap.String("env", cfg.AppEnv), zap.String("store", cfg.StoreDriver))

	st, closeStore := openStore(cfg, logger)

	// Optional redis: order cache and checkout rate limit
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		st = store.NewCachedStore(st, rdb, cfg.OrderCacheTTL, logger)
	}

	// Notifications
	hub := notify.NewHub(logger)
	senders := notify.Multi{notify.LogSender{Logger: logger}, hub}
	var kafkaSender *notify.KafkaSender
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := notify.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Fatal("kafka unavailable", zap.Error(err))
		}
		kafkaSender = notify.NewKafkaSender(producer, cfg.KafkaTopicPrefix)
		senders = append(senders, kafkaSender)
	}
	dispatcher := notify.NewDispatcher(senders, logger, cfg.NotifyWorkers, cfg.NotifyQueueSize)

	ledger := inventory.NewLedger(st, logger)
	builder := checkout.NewBuilder(ledger, st, st, dispatcher, logger)
	orders := lifecycle.NewService(st, lifecycle.PolicyFor(cfg.OrderStatusPolicy), dispatcher, logger)

	// Gin setup
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		Config:     cfg,
		Logger:     logger,
		Store:      st,
		Ledger:     ledger,
		Checkout:   builder,
		Orders:     orders,
		LiveOrders: hub.Handler(),
		Redis:      rdb,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// In-flight requests are done; flush what they queued before closing
	// the senders.
	dispatcher.Close()
	hub.Close()
	if kafkaSender != nil {
		if err := kafkaSender.Close(); err != nil {
			logger.Warn("kafka producer close failed", zap.Error(err))
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	closeStore()
	logger.Info("server exited properly")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore returns the configured storage driver and its closer.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, func()) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	return store.NewPostgres(db, cfg.DBTimeout), func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
