package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"grocery-api/internal/cache"
	"grocery-api/internal/config"
	"grocery-api/internal/db"
	"grocery-api/internal/httpserver"
	cartrepo "grocery-api/internal/repository/cart"
	customerrepo "grocery-api/internal/repository/customer"
	inventoryrepo "grocery-api/internal/repository/inventory"
	orderrepo "grocery-api/internal/repository/order"
	productrepo "grocery-api/internal/repository/product"
	cartsvc "grocery-api/internal/service/cart"
	catalogsvc "grocery-api/internal/service/catalog"
	customersvc "grocery-api/internal/service/customer"
	ordersvc "grocery-api/internal/service/order"
	"grocery-api/internal/telemetry"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatalf("init telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	tx := db.NewTxRunner(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	inventoryRepo := inventoryrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	var productCache catalogsvc.ProductCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unreachable at %s, catalog cache disabled: %v", cfg.RedisAddr, err)
		} else {
			productCache = cache.NewProductCache(client, cfg.CatalogCacheTTL)
			logger.Printf("catalog cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.CatalogCacheTTL)
		}
	}

	srv, err := httpserver.New(httpserver.Options{
		Addr:           cfg.HTTPAddr,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		ServiceName:    cfg.ServiceName,
	}, logger, dbpool, httpserver.Deps{
		CatalogSvc:  catalogsvc.New(productRepo, inventoryRepo, cartRepo, tx, productCache, logger),
		CustomerSvc: customersvc.New(customerRepo, cartRepo, inventoryRepo, tx, logger),
		CartSvc:     cartsvc.New(cartRepo, inventoryRepo, tx, logger),
		OrderSvc:    ordersvc.New(cartRepo, orderRepo, tx, logger),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
