package domain

import "github.com/shopspring/decimal"

// DefaultCategory is assigned to products loaded without a category.
const DefaultCategory = "general"

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image,omitempty"`
}

// Valid reports whether the product carries the fields every catalog entry needs.
func (p Product) Valid() bool {
	return p.ID != "" && p.Name != "" && !p.Price.IsNegative()
}
