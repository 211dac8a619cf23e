package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "Pending"
	OrderStatusComplete OrderStatus = "Complete"
)

// ParseOrderStatus accepts only the exact status names.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusComplete:
		return OrderStatus(s), true
	}
	return "", false
}

type Order struct {
	ID           int64
	CustomerID   int64
	CustomerName string
	TotalAmount  decimal.Decimal
	Status       OrderStatus
	CreatedAt    time.Time
	Lines        []OrderLine
}

// OrderLine is an immutable snapshot of a cart line at placement time.
type OrderLine struct {
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// NewOrderLines freezes cart lines into order lines.
func NewOrderLines(orderID int64, lines []CartLine) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}
	return out
}
