// Package seed loads a small demo grocery catalogue and a couple of customers.
package seed

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"grocery-api/internal/db"
	cartrepo "grocery-api/internal/repository/cart"
	inventoryrepo "grocery-api/internal/repository/inventory"
	productrepo "grocery-api/internal/repository/product"
	catalogsvc "grocery-api/internal/service/catalog"
)

type productSeed struct {
	Name        string
	Price       string
	Description string
	Stock       int
}

type customerSeed struct {
	Name    string
	Email   string
	Address string
}

var products = []productSeed{
	{Name: "Apples", Price: "1.25", Description: "Crisp red apples, per piece", Stock: 120},
	{Name: "Bananas", Price: "0.35", Description: "Ripe bananas, per piece", Stock: 200},
	{Name: "Whole Milk", Price: "1.89", Description: "1 litre carton", Stock: 40},
	{Name: "Sourdough Bread", Price: "3.50", Description: "Freshly baked loaf", Stock: 25},
	{Name: "Free Range Eggs", Price: "4.20", Description: "Box of 12", Stock: 30},
}

var customers = []customerSeed{
	{Name: "Demo Shopper", Email: "shopper@example.com", Address: "1 Market Street"},
	{Name: "Second Shopper", Email: "second@example.com"},
}

// Apply upserts the demo data. Running it again resets stock levels to the
// seeded values and leaves existing customers untouched.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	catalog := catalogsvc.New(
		productrepo.NewPostgres(pool, logger),
		inventoryrepo.NewPostgres(pool, logger),
		cartrepo.NewPostgres(pool, logger),
		db.NewTxRunner(pool, logger),
		nil,
		logger,
	)

	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("parse price for %s: %w", p.Name, err)
		}
		if _, err := catalog.ImportProduct(ctx, catalogsvc.ProductInput{
			Name:        p.Name,
			Price:       &price,
			Description: p.Description,
		}, p.Stock); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	for _, c := range customers {
		if err := ensureCustomer(ctx, pool, c); err != nil {
			return fmt.Errorf("ensure customer %s: %w", c.Email, err)
		}
	}
	logger.Printf("seeded products=%d customers=%d", len(products), len(customers))
	return nil
}

func ensureCustomer(ctx context.Context, pool *pgxpool.Pool, c customerSeed) error {
	const q = `
INSERT INTO customers (name, email, address)
VALUES ($1, $2, NULLIF($3, ''))
ON CONFLICT (lower(email)) DO NOTHING
`
	_, err := pool.Exec(ctx, q, c.Name, c.Email, c.Address)
	return err
}
