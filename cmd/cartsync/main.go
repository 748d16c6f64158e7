package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/cartsync"
	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"

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
	logger = logger.Named("cart-sync")

	logger.Info("starting cart sync job",
		zap.Duration("interval", cfg.CartSync.Interval),
	)

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

	cartRepo := repository.NewPostgresCartRepository(db, logger)
	productClient := clients.NewHTTPProductClient(cfg.ProductService, logger)

	job := cartsync.NewJob(cartRepo, productClient, cfg.CartSync.Interval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go metrics.Serve(cfg.Server.Port, "cart-sync", logger)

	job.Run(ctx)

	logger.Info("cart sync exited")
}
