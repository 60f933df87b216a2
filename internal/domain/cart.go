package domain

import "github.com/shopspring/decimal"

// LineItem is a copy of the product taken when it was first added to the cart.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Cart struct {
	Items           []LineItem `json:"items"`
	DiscountApplied bool       `json:"discountApplied"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to hand out of a lock.
func (c *Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, DiscountApplied: c.DiscountApplied}
}
