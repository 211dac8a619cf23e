package db

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFunc is one unit of work executed inside a transaction.
type TxFunc func(ctx context.Context, q Querier) error

const defaultTxAttempts = 3

// TxRunner scopes a unit of work to a single transaction.
type TxRunner struct {
	pool     *pgxpool.Pool
	logger   *log.Logger
	attempts int
}

// NewTxRunner returns a TxRunner bound to the pool.
func NewTxRunner(pool *pgxpool.Pool, logger *log.Logger) *TxRunner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &TxRunner{pool: pool, logger: logger, attempts: defaultTxAttempts}
}

// InTx runs fn in a READ COMMITTED transaction. The transaction is rolled back
// whenever fn or the commit fails; serialization failures and deadlocks re-run
// the whole unit.
func (r *TxRunner) InTx(ctx context.Context, fn TxFunc) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		r.logger.Printf("tx: retrying attempt=%d err=%v", attempt, err)
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn TxFunc) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsRetryable reports whether err is a transient conflict worth re-running.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == CodeSerializationFailure || pgErr.Code == CodeDeadlockDetected
}

// Postgres SQLSTATE codes mapped by the repositories.
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeCheckViolation       = "23514"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// HasCode reports whether err wraps a Postgres error with the given code.
func HasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
