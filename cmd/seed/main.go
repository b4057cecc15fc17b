package main

import (
	"context"
	"flag"
	"log"
	"time"

	"devevent/config"
	"devevent/database"
	"devevent/seed"

	"go.uber.org/zap"
)

func main() {
	path := flag.String("file", "./data/events.yaml", "seed file path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	err = run(cfg, *path, logger)
	_ = logger.Sync()
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config, path string, logger *zap.Logger) error {
	file, err := seed.LoadFile(path)
	if err != nil {
		logger.Error("cannot read seed file", zap.String("path", path), zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn := database.NewConnector(database.ConnectorConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.ConnectTimeout,
	}, logger)
	defer func() {
		if err := conn.Disconnect(context.Background()); err != nil {
			logger.Warn("disconnect failed", zap.Error(err))
		}
	}()

	if err := database.EnsureIndexes(ctx, conn); err != nil {
		logger.Error("cannot prepare indexes", zap.Error(err))
		return err
	}

	events := database.NewEventStore(conn, logger)
	users := database.NewUserStore(conn)
	report, err := seed.NewSeeder(events, users, logger).Run(ctx, file)
	if err != nil {
		logger.Error("seeding failed", zap.Int("created", report.Created), zap.Error(err))
		return err
	}

	logger.Info("seeding finished", zap.Int("created", report.Created), zap.Int("skipped", report.Skipped))
	return nil
}
