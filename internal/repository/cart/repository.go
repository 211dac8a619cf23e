package cart

import (
	"context"

	"grocery-api/internal/db"
	"grocery-api/internal/domain"
)

// Repository stores cart lines keyed by (customer, product).
type Repository interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.CartLine, error)
	AddQuantity(ctx context.Context, q db.Querier, customerID, productID int64, quantity int) error
	RemoveLine(ctx context.Context, q db.Querier, customerID, productID int64) (int, error)
	LockLines(ctx context.Context, q db.Querier, customerID int64) ([]domain.CartLine, error)
	DeleteLines(ctx context.Context, q db.Querier, ids []int64) error
	DeleteByProduct(ctx context.Context, q db.Querier, productID int64) error
}
