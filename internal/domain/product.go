package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// InventoryItem is a product joined with its stock level. StockLevel is nil
// when the product has no inventory row.
type InventoryItem struct {
	ProductID  int64
	Name       string
	Price      decimal.Decimal
	StockLevel *int
}
