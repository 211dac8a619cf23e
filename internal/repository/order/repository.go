package order

import (
	"context"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

// Repository persists orders and their immutable lines.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, o domain.Order) (*domain.Order, error)
	InsertLines(ctx context.Context, q db.Querier, lines []domain.OrderLine) error
	List(ctx context.Context, customerID *int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	Delete(ctx context.Context, q db.Querier, id int64) error
}
