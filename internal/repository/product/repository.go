package product

import (
	"context"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error)
	UpsertByName(ctx context.Context, q db.Querier, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, q db.Querier, id int64) error
}
