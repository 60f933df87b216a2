package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCustomerName is used on orders placed without a customer name.
const DefaultCustomerName = "Customer"

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
}

type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// OrderRecord is the immutable snapshot handed to the email and logging collaborators.
type OrderRecord struct {
	OrderID         string          `json:"orderId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerComment string          `json:"customerComment"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DiscountPercent int             `json:"discountPercent"`
	Total           decimal.Decimal `json:"total"`
	PlacedAt        time.Time       `json:"placedAt"`
}

func (o OrderRecord) HasDiscount() bool {
	return o.DiscountPercent > 0
}
