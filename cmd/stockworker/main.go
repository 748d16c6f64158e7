package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"
	"github.com/mercato-shop/mercato-orders-platform/internal/stock"

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
	logger = logger.Named("stock-worker")

	logger.Info("starting stock worker")

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

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	inventoryRepo := repository.NewPostgresInventoryRepository(db, logger)
	dedup := repository.NewRedisOrderCache(redisClient, cfg.Redis.TTL, logger.Named("dedup"))
	worker := stock.NewWorker(inventoryRepo, dedup, logger)

	consumer := events.NewConsumer(cfg.Kafka, cfg.Kafka.ConsumerGroup+".stock",
		[]string{events.TopicOrderCreated}, logger)
	defer consumer.Close()
	consumer.Route(events.TopicOrderCreated, worker.HandleOrderCreated)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go metrics.Serve(cfg.Server.Port, "stock-worker", logger)
	go worker.RunLowStockSweep(ctx, cfg.Stock.LowStockInterval)

	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("consumer failed", zap.Error(err))
	}

	logger.Info("stock worker exited")
}
