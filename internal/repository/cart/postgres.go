package cart

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

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.CartLine, error) {
	const q = `
SELECT c.id, c.customer_id, c.product_id, p.name, p.price, c.quantity
FROM cart c
JOIN products p ON c.product_id = p.id
WHERE c.customer_id = $1
ORDER BY c.id ASC
`
	return r.fetchLines(ctx, r.pool, q, customerID)
}

// LockLines returns the customer's cart joined with current prices and keeps
// the cart rows locked until the transaction ends.
func (r *postgresRepo) LockLines(ctx context.Context, q db.Querier, customerID int64) ([]domain.CartLine, error) {
	const stmt = `
SELECT c.id, c.customer_id, c.product_id, p.name, p.price, c.quantity
FROM cart c
JOIN products p ON c.product_id = p.id
WHERE c.customer_id = $1
ORDER BY c.id ASC
FOR UPDATE OF c
`
	return r.fetchLines(ctx, q, stmt, customerID)
}

func (r *postgresRepo) AddQuantity(ctx context.Context, q db.Querier, customerID, productID int64, quantity int) error {
	const stmt = `
INSERT INTO cart (customer_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (customer_id, product_id) DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
`
	if _, err := q.Exec(ctx, stmt, customerID, productID, quantity); err != nil {
		if db.HasCode(err, db.CodeForeignKeyViolation) {
			return domain.ErrNotFound
		}
		r.logger.Printf("cart repo: add customer_id=%d product_id=%d error=%v", customerID, productID, err)
		return err
	}
	return nil
}

// RemoveLine deletes one line and returns the quantity it held.
func (r *postgresRepo) RemoveLine(ctx context.Context, q db.Querier, customerID, productID int64) (int, error) {
	var quantity int
	err := q.QueryRow(ctx, `
DELETE FROM cart
WHERE customer_id = $1 AND product_id = $2
RETURNING quantity
`, customerID, productID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return quantity, nil
}

// DeleteLines removes exactly the given cart rows. Lines added after a
// LockLines snapshot are left alone.
func (r *postgresRepo) DeleteLines(ctx context.Context, q db.Querier, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := q.Exec(ctx, `DELETE FROM cart WHERE id = ANY($1)`, ids); err != nil {
		r.logger.Printf("cart repo: delete lines count=%d error=%v", len(ids), err)
		return err
	}
	return nil
}

func (r *postgresRepo) DeleteByProduct(ctx context.Context, q db.Querier, productID int64) error {
	_, err := q.Exec(ctx, `DELETE FROM cart WHERE product_id = $1`, productID)
	return err
}

func (r *postgresRepo) fetchLines(ctx context.Context, q db.Querier, stmt string, customerID int64) ([]domain.CartLine, error) {
	rows, err := q.Query(ctx, stmt, customerID)
	if err != nil {
		r.logger.Printf("cart repo: list customer_id=%d error=%v", customerID, err)
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.ProductID, &l.Name, &l.Price, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
