package inventory

import (
	"context"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

// Repository owns stock levels keyed by product.
type Repository interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	Init(ctx context.Context, q db.Querier, productID int64, stock int) error
	SetStock(ctx context.Context, q db.Querier, productID int64, stock int) error
	LockStock(ctx context.Context, q db.Querier, productID int64) (int, error)
	Decrement(ctx context.Context, q db.Querier, productID int64, quantity int) error
	Increment(ctx context.Context, q db.Querier, productID int64, quantity int) error
	Delete(ctx context.Context, q db.Querier, productID int64) error
}
