package product

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, name, price, description, created_at
FROM products
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `
SELECT id, name, price, description, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%d error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error) {
	const stmt = `
INSERT INTO products (name, price, description)
VALUES ($1, $2, $3)
RETURNING id, created_at
`
	res := p
	if err := q.QueryRow(ctx, stmt, p.Name, p.Price, p.Description).Scan(&res.ID, &res.CreatedAt); err != nil {
		if db.HasCode(err, db.CodeUniqueViolation) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create name=%q error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%d name=%q", res.ID, res.Name)
	return &res, nil
}

func (r *postgresRepo) UpsertByName(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error) {
	const stmt = `
INSERT INTO products (name, price, description)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET
    price = EXCLUDED.price,
    description = EXCLUDED.description
RETURNING id, created_at
`
	res := p
	if err := q.QueryRow(ctx, stmt, p.Name, p.Price, p.Description).Scan(&res.ID, &res.CreatedAt); err != nil {
		r.logger.Printf("product repo: upsert name=%q error=%v", p.Name, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id int64) error {
	cmd, err := q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%d error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
