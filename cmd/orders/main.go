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

	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/handlers"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"
	"github.com/mercato-shop/mercato-orders-platform/internal/server"
	"github.com/mercato-shop/mercato-orders-platform/internal/service"

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
	logger = logger.Named("orders-service")

	logger.Info("starting orders service", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	orderRepo := repository.NewPostgresOrderRepository(db, logger)

	var cache service.OrderCache
	if cfg.Features.EnableOrderCaching {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		cache = repository.NewRedisOrderCache(redisClient, cfg.Redis.TTL, logger.Named("order-cache"))
	}

	productClient := clients.NewHTTPProductClient(cfg.ProductService, logger)
	cartClient := clients.NewHTTPCartClient(cfg.CartService, logger)
	shopClient := clients.NewHTTPShopClient(cfg.ShopService, logger)
	analyticsClient := clients.NewHTTPAnalyticsClient(cfg.AnalyticsService, logger)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Features.EnableOrderEvents {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger.Named("publisher"))
	}
	defer publisher.Close()

	validator := service.NewCartValidator(productClient, logger)
	orderService := service.NewOrderService(orderRepo, cartClient, validator, publisher, cache, logger)
	statusService := service.NewItemStatusService(orderRepo, shopClient, analyticsClient, publisher, cache, logger)

	h := handlers.NewHandlers(orderService, statusService, cfg, logger)
	srv := server.New(cfg, h, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("orders service exited")
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	return db, nil
}
