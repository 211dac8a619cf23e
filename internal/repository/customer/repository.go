package customer

import (
	"context"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Lock(ctx context.Context, q db.Querier, id int64) error
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, q db.Querier, id int64) error
}
