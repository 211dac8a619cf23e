package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"grocery-api/internal/config"
	"grocery-api/internal/db"
	"grocery-api/internal/importer"
	cartrepo "grocery-api/internal/repository/cart"
	inventoryrepo "grocery-api/internal/repository/inventory"
	productrepo "grocery-api/internal/repository/product"
	catalogsvc "grocery-api/internal/service/catalog"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a product CSV (name,price,description,stock_level)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	catalog := catalogsvc.New(
		productrepo.NewPostgres(pool, logger),
		inventoryrepo.NewPostgres(pool, logger),
		cartrepo.NewPostgres(pool, logger),
		db.NewTxRunner(pool, logger),
		nil,
		logger,
	)

	start := time.Now()
	count, err := importer.NewCSVImporter(f, catalog).Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", count, err)
	}
	logger.Printf("imported %d products in %s", count, time.Since(start).Truncate(time.Millisecond))
}
