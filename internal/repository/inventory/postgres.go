package inventory

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.InventoryItem, error) {
	const q = `
SELECT p.id, p.name, p.price, i.stock_level
FROM products p
LEFT JOIN inventory i ON p.id = i.product_id
ORDER BY p.id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("inventory repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.StockLevel); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Init(ctx context.Context, q db.Querier, productID int64, stock int) error {
	_, err := q.Exec(ctx, `
INSERT INTO inventory (product_id, stock_level)
VALUES ($1, $2)
ON CONFLICT (product_id) DO UPDATE SET stock_level = EXCLUDED.stock_level
`, productID, stock)
	return err
}

func (r *postgresRepo) SetStock(ctx context.Context, q db.Querier, productID int64, stock int) error {
	cmd, err := q.Exec(ctx, `UPDATE inventory SET stock_level = $1 WHERE product_id = $2`, stock, productID)
	if err != nil {
		r.logger.Printf("inventory repo: set product_id=%d stock=%d error=%v", productID, stock, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("inventory repo: set product_id=%d stock=%d", productID, stock)
	return nil
}

// LockStock reads the stock level and holds the row lock until the
// surrounding transaction ends.
func (r *postgresRepo) LockStock(ctx context.Context, q db.Querier, productID int64) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `SELECT stock_level FROM inventory WHERE product_id = $1 FOR UPDATE`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return stock, nil
}

// Decrement removes quantity units only if enough stock remains.
func (r *postgresRepo) Decrement(ctx context.Context, q db.Querier, productID int64, quantity int) error {
	var remaining int
	err := q.QueryRow(ctx, `
UPDATE inventory
SET stock_level = stock_level - $1
WHERE product_id = $2 AND stock_level >= $1
RETURNING stock_level
`, quantity, productID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		available, lookupErr := r.available(ctx, q, productID)
		if lookupErr != nil {
			return lookupErr
		}
		return &domain.InsufficientStockError{ProductID: productID, Available: available}
	}
	return err
}

func (r *postgresRepo) Increment(ctx context.Context, q db.Querier, productID int64, quantity int) error {
	_, err := q.Exec(ctx, `UPDATE inventory SET stock_level = stock_level + $1 WHERE product_id = $2`, quantity, productID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, productID int64) error {
	_, err := q.Exec(ctx, `DELETE FROM inventory WHERE product_id = $1`, productID)
	return err
}

func (r *postgresRepo) available(ctx context.Context, q db.Querier, productID int64) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `SELECT stock_level FROM inventory WHERE product_id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return stock, err
}
