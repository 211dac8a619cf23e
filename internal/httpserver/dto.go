package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"grocery-api/internal/domain"
)

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type inventoryResponse struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	StockLevel *int    `json:"stock_level"`
}

type cartLineResponse struct {
	CartID    int64   `json:"cart_id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type customerResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address *string `json:"address"`
}

type orderResponse struct {
	OrderID      int64               `json:"order_id"`
	CustomerID   int64               `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	TotalAmount  float64             `json:"total_amount"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	Items        []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{
			ID:          p.ID,
			Name:        p.Name,
			Price:       money(p.Price),
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}

func toInventoryResponses(items []domain.InventoryItem) []inventoryResponse {
	out := make([]inventoryResponse, 0, len(items))
	for _, it := range items {
		out = append(out, inventoryResponse{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Price:      money(it.Price),
			StockLevel: it.StockLevel,
		})
	}
	return out
}

func toCartResponses(lines []domain.CartLine) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineResponse{
			CartID:    l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     money(l.Price),
			Quantity:  l.Quantity,
		})
	}
	return out
}

func toCustomerResponses(customers []domain.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Address: c.Address})
	}
	return out
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items := make([]orderItemResponse, 0, len(o.Lines))
		for _, l := range o.Lines {
			items = append(items, orderItemResponse{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Quantity:    l.Quantity,
				Price:       money(l.Price),
			})
		}
		out = append(out, orderResponse{
			OrderID:      o.ID,
			CustomerID:   o.CustomerID,
			CustomerName: o.CustomerName,
			TotalAmount:  money(o.TotalAmount),
			Status:       string(o.Status),
			CreatedAt:    o.CreatedAt,
			Items:        items,
		})
	}
	return out
}
