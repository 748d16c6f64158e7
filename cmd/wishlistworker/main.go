package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"
	"github.com/mercato-shop/mercato-orders-platform/internal/wishlist"

	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.Named("wishlist-worker")

	logger.Info("starting wishlist worker")

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	store := repository.NewPostgresWishlistRepository(db, logger)
	worker := wishlist.NewWorker(store, logger)

	consumer := events.NewConsumer(cfg.Kafka, cfg.Kafka.ConsumerGroup+".wishlist",
		[]string{events.TopicUserCreated, events.TopicShopApproved}, logger)
	defer consumer.Close()
	consumer.Route(events.TopicUserCreated, worker.HandleUserCreated)
	consumer.Route(events.TopicShopApproved, worker.HandleShopApproved)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go metrics.Serve(cfg.Server.Port, "wishlist-worker", logger)

	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("consumer failed", zap.Error(err))
	}

	logger.Info("wishlist worker exited")
}
