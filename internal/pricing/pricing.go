// Package pricing derives cart totals from line items and the discount flag.
package pricing

import (
	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

// DiscountPercent is the single flat discount tier.
const DiscountPercent = 5

var discountRate = decimal.NewFromInt(DiscountPercent).Div(decimal.NewFromInt(100))

type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DiscountPercent int             `json:"discountPercent"`
	Total           decimal.Decimal `json:"total"`
}

// Compute returns exact totals. Rounding is left to Display and Money.
func Compute(items []domain.LineItem, discountApplied bool) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}

	t := Totals{
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		Total:          subtotal,
	}
	if discountApplied {
		t.DiscountAmount = subtotal.Mul(discountRate)
		t.DiscountPercent = DiscountPercent
		t.Total = subtotal.Sub(t.DiscountAmount)
	}
	return t
}

// CanApplyDiscount reports whether applying the discount would change the cart.
func CanApplyDiscount(c *domain.Cart) bool {
	return !c.IsEmpty() && !c.DiscountApplied
}

// Display renders an amount with two decimal places.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Money(d decimal.Decimal) string {
	return "$" + Display(d)
}

type DisplayTotals struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discountAmount"`
	Total          string `json:"total"`
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal:       Money(t.Subtotal),
		DiscountAmount: Money(t.DiscountAmount),
		Total:          Money(t.Total),
	}
}
