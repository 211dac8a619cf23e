package order

import (
	"context"
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

func (r *postgresRepo) Insert(ctx context.Context, q db.Querier, o domain.Order) (*domain.Order, error) {
	const stmt = `
INSERT INTO orders (customer_id, total_amount, status)
VALUES ($1, $2, $3)
RETURNING id, created_at
`
	res := o
	if err := q.QueryRow(ctx, stmt, o.CustomerID, o.TotalAmount, string(o.Status)).Scan(&res.ID, &res.CreatedAt); err != nil {
		if db.HasCode(err, db.CodeForeignKeyViolation) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: insert customer_id=%d error=%v", o.CustomerID, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) InsertLines(ctx context.Context, q db.Querier, lines []domain.OrderLine) error {
	const stmt = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
VALUES ($1, $2, $3, $4, $5)
`
	for _, l := range lines {
		if _, err := q.Exec(ctx, stmt, l.OrderID, l.ProductID, l.ProductName, l.Quantity, l.Price); err != nil {
			r.logger.Printf("order repo: insert line order_id=%d product_id=%d error=%v", l.OrderID, l.ProductID, err)
			return err
		}
	}
	return nil
}

// List returns orders newest first, optionally filtered by customer, each
// with its lines attached.
func (r *postgresRepo) List(ctx context.Context, customerID *int64) ([]domain.Order, error) {
	const q = `
SELECT o.id, o.customer_id, cu.name, o.total_amount, o.status, o.created_at
FROM orders o
JOIN customers cu ON o.customer_id = cu.id
WHERE $1::bigint IS NULL OR o.customer_id = $1
ORDER BY o.created_at DESC, o.id DESC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	orders := []domain.Order{}
	index := map[int64]int{}
	ids := []int64{}
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.TotalAmount, &status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		o.Lines = []domain.OrderLine{}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lineRows, err := r.pool.Query(ctx, `
SELECT order_id, product_id, product_name, quantity, price
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id ASC
`, ids)
	if err != nil {
		return nil, err
	}
	lines, err := pgx.CollectRows(lineRows, func(row pgx.CollectableRow) (domain.OrderLine, error) {
		var l domain.OrderLine
		err := row.Scan(&l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Price)
		return l, err
	})
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		i := index[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		r.logger.Printf("order repo: update status id=%d error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the order's lines and then the order.
func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	cmd, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("order repo: delete id=%d error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
