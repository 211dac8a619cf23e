// Package dbtest provides a migrated Postgres pool for integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"grocery-api/internal/migrate"
)

// Pool returns a pool to a freshly truncated, migrated database. TEST_DB_DSN
// wins when set; otherwise a disposable postgres container is started and the
// test is skipped if no container runtime is available.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = startContainer(ctx, t)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	Reset(t, pool)
	return pool
}

// Reset truncates every table and restarts identities.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), `TRUNCATE order_items, orders, cart, inventory, customers, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("grocery_test"),
		postgres.WithUsername("grocery"),
		postgres.WithPassword("grocery"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("container dsn: %v", err)
	}
	return dsn
}

// InsertProduct creates a product with an inventory row and returns its id.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) int64 {
	t.Helper()
	ctx := context.Background()
	var id int64
	if err := pool.QueryRow(ctx, `INSERT INTO products (name, price, description) VALUES ($1, $2::numeric, 'test') RETURNING id`, name, price).Scan(&id); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO inventory (product_id, stock_level) VALUES ($1, $2)`, id, stock); err != nil {
		t.Fatalf("insert inventory: %v", err)
	}
	return id
}

// InsertCustomer creates a customer and returns its id.
func InsertCustomer(t *testing.T, pool *pgxpool.Pool, name, email string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(context.Background(), `INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id`, name, email).Scan(&id); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	return id
}

// StockLevel reads the current stock for a product.
func StockLevel(t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()
	var stock int
	if err := pool.QueryRow(context.Background(), `SELECT stock_level FROM inventory WHERE product_id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

// Count returns SELECT count(*) for the given query.
func Count(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
