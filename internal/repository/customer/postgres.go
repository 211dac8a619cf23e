package customer

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

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	const q = `
SELECT id, name, email, address, created_at
FROM customers
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("customer repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Customer{}
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const q = `
SELECT id, name, email, address, created_at
FROM customers
WHERE id = $1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

// Lock holds the customer row until the transaction ends. Cart inserts for the
// customer wait on it through their foreign key.
func (r *postgresRepo) Lock(ctx context.Context, q db.Querier, id int64) error {
	var locked int64
	err := q.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		r.logger.Printf("customer repo: lock id=%d error=%v", id, err)
	}
	return err
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (name, email, address)
VALUES ($1, $2, $3)
RETURNING id, name, email, address, created_at
`
	created, err := r.scanCustomer(r.pool.QueryRow(ctx, q, c.Name, c.Email, c.Address))
	if err != nil {
		if db.HasCode(err, db.CodeUniqueViolation) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: create email=%q error=%v", c.Email, err)
		return nil, err
	}
	r.logger.Printf("customer repo: created id=%d", created.ID)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET name = $1, email = $2, address = $3
WHERE id = $4
RETURNING id, name, email, address, created_at
`
	updated, err := r.scanCustomer(r.pool.QueryRow(ctx, q, c.Name, c.Email, c.Address, c.ID))
	if err != nil {
		if db.HasCode(err, db.CodeUniqueViolation) {
			return nil, domain.ErrAlreadyExists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("customer repo: update id=%d error=%v", c.ID, err)
		}
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, q db.Querier, id int64) error {
	cmd, err := q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if db.HasCode(err, db.CodeForeignKeyViolation) {
			return domain.ErrInUse
		}
		r.logger.Printf("customer repo: delete id=%d error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
