package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devevent/cache"
	"devevent/config"
	"devevent/database"
	"devevent/handlers"
	"devevent/notify"
	"devevent/query"
	"devevent/router"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// nothing is dialed here, a bad MONGODB_URI surfaces on first use
	conn := database.NewConnector(database.ConnectorConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.ConnectTimeout,
	}, logger)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer cancel()
		if err := database.EnsureIndexes(ctx, conn); err != nil {
			logger.Warn("index setup failed", zap.Error(err))
		}
	}()

	eventStore := database.NewEventStore(conn, logger)
	bookingStore := database.NewBookingStore(conn, eventStore, logger)
	userStore := database.NewUserStore(conn)

	rdb := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb == nil && cfg.RedisAddr != "" {
		logger.Warn("redis is not reachable, event cache disabled", zap.String("addr", cfg.RedisAddr))
	}
	eventCache := cache.NewEventCache(eventStore, rdb, cfg.CacheTTL, logger)

	h := handlers.New(handlers.Deps{
		Events:     query.NewFacade(eventCache),
		EventStore: eventStore,
		Bookings:   bookingStore,
		Users:      userStore,
		Notifier:   notify.NewPublisher(cfg.AMQPURL, logger),
		Cache:      eventCache,
		Health:     conn,
		SigningKey: cfg.SigningKey,
		Logger:     logger,
	})

	app := fiber.New()
	router.SetupRoutes(app, h, cfg.SigningKey)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Disconnect(ctx); err != nil {
		logger.Warn("db disconnect failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
