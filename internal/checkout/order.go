package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/google/uuid"
)

// PreviewOrderID marks orders built for preview only.
const PreviewOrderID = "PREVIEW"

// NewOrderID returns WC-<unix millis>-<8 random hex chars>.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("WC-%d-%s", now.UnixMilli(), strings.ToUpper(uuid.NewString()[:8]))
}

func validate(c domain.Customer, snap cart.Snapshot) error {
	if strings.TrimSpace(c.Email) == "" {
		return &ValidationError{Field: "customerEmail", Message: "please enter the customer email address"}
	}
	if len(snap.Items) == 0 {
		return &ValidationError{Field: "items", Message: "cart is empty"}
	}
	return nil
}

func buildOrder(id string, c domain.Customer, snap cart.Snapshot, now time.Time) domain.OrderRecord {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = domain.DefaultCustomerName
	}

	items := make([]domain.OrderItem, len(snap.Items))
	for i, li := range snap.Items {
		items[i] = domain.OrderItem{
			Name:     li.Name,
			Quantity: li.Quantity,
			Price:    li.Price,
			Subtotal: li.Subtotal(),
		}
	}

	return domain.OrderRecord{
		OrderID:         id,
		CustomerName:    name,
		CustomerEmail:   strings.TrimSpace(c.Email),
		CustomerPhone:   strings.TrimSpace(c.Phone),
		CustomerComment: strings.TrimSpace(c.Comment),
		Items:           items,
		Subtotal:        snap.Totals.Subtotal,
		DiscountAmount:  snap.Totals.DiscountAmount,
		DiscountPercent: snap.Totals.DiscountPercent,
		Total:           snap.Totals.Total,
		PlacedAt:        now,
	}
}
