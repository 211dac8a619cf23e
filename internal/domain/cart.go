package domain

import "github.com/shopspring/decimal"

// CartLine is one (customer, product) pairing joined with the product's
// current name and price.
type CartLine struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	Name       string
	Price      decimal.Decimal
	Quantity   int
}

// Subtotal returns price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineIDs returns the cart row ids of lines.
func LineIDs(lines []CartLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ID)
	}
	return ids
}

// CartTotal sums the subtotals of lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
