// Package cart keeps one session's line items and discount flag, persisting every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/fjod/go_pos/internal/store"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found in catalog")

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	Product(id string) (domain.Product, bool)
}

type Snapshot struct {
	Items           []domain.LineItem     `json:"items"`
	DiscountApplied bool                  `json:"discountApplied"`
	Totals          pricing.Totals        `json:"totals"`
	Display         pricing.DisplayTotals `json:"display"`
	ItemCount       int                   `json:"itemCount"`
}

type Aggregator struct {
	mu   sync.Mutex
	cart domain.Cart

	key     string
	catalog ProductLookup
	store   store.Store
	logger  *zap.Logger
}

// NewAggregator returns an empty cart persisted under key. Call Load to restore saved state.
func NewAggregator(key string, catalog ProductLookup, s store.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		key:     key,
		catalog: catalog,
		store:   s,
		logger:  logger.Named("cart").With(zap.String("cart_key", key)),
	}
}

// Load replaces the in-memory cart with the persisted one. A missing or unreadable
// record leaves an empty cart.
func (a *Aggregator) Load(ctx context.Context) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cart = domain.Cart{}
	raw, err := a.store.Get(ctx, a.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		a.logger.Warn("cart load failed", zap.Error(err))
	default:
		var saved domain.Cart
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			a.logger.Warn("stored cart is corrupt, starting empty", zap.Error(err))
			break
		}
		a.cart = sanitize(saved)
	}
	return a.snapshot()
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregator) AddItem(ctx context.Context, productID string) (Snapshot, error) {
	p, ok := a.catalog.Product(productID)
	if !ok {
		a.logger.Warn("add of unknown product ignored", zap.String("product_id", productID))
		return a.Snapshot(), fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if i := a.cart.Find(productID); i >= 0 {
		a.cart.Items[i].Quantity++
	} else {
		a.cart.Items = append(a.cart.Items, domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  1,
			Image:     p.Image,
		})
	}
	return a.commit(ctx), nil
}

func (a *Aggregator) RemoveItem(ctx context.Context, productID string) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.remove(productID) {
		return a.snapshot()
	}
	return a.commit(ctx)
}

// UpdateQuantity adds delta to the line's quantity and drops the line when it reaches zero.
func (a *Aggregator) UpdateQuantity(ctx context.Context, productID string, delta int) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.cart.Find(productID)
	if i < 0 || delta == 0 {
		return a.snapshot()
	}

	qty := a.cart.Items[i].Quantity
	switch {
	case delta > 0 && qty > math.MaxInt-delta:
		a.cart.Items[i].Quantity = math.MaxInt
	case qty+delta <= 0:
		a.remove(productID)
	default:
		a.cart.Items[i].Quantity = qty + delta
	}
	return a.commit(ctx)
}

// Reset empties the cart and clears the discount.
func (a *Aggregator) Reset(ctx context.Context) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cart = domain.Cart{}
	return a.commit(ctx)
}

// Consume takes the ordered quantities out of the cart and clears the discount. Lines added
// or raised after the order was built stay behind.
func (a *Aggregator) Consume(ctx context.Context, ordered []domain.LineItem) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, item := range ordered {
		i := a.cart.Find(item.ProductID)
		if i < 0 {
			continue
		}
		if a.cart.Items[i].Quantity <= item.Quantity {
			a.remove(item.ProductID)
			continue
		}
		a.cart.Items[i].Quantity -= item.Quantity
	}
	a.cart.DiscountApplied = false
	return a.commit(ctx)
}

// ApplyDiscount is a no-op on an empty cart or when the discount is already on.
func (a *Aggregator) ApplyDiscount(ctx context.Context) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !pricing.CanApplyDiscount(&a.cart) {
		return a.snapshot()
	}
	a.cart.DiscountApplied = true
	return a.commit(ctx)
}

func (a *Aggregator) ClearDiscount(ctx context.Context) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cart.DiscountApplied {
		return a.snapshot()
	}
	a.cart.DiscountApplied = false
	return a.commit(ctx)
}

func (a *Aggregator) remove(productID string) bool {
	i := a.cart.Find(productID)
	if i < 0 {
		return false
	}
	a.cart.Items = append(a.cart.Items[:i], a.cart.Items[i+1:]...)
	if a.cart.IsEmpty() {
		a.cart.DiscountApplied = false
	}
	return true
}

// commit persists the cart and returns the new snapshot. Callers hold a.mu.
func (a *Aggregator) commit(ctx context.Context) Snapshot {
	data, err := json.Marshal(a.cart)
	if err != nil {
		a.logger.Warn("marshal cart failed", zap.Error(err))
		return a.snapshot()
	}
	if err := a.store.Set(ctx, a.key, string(data)); err != nil {
		a.logger.Warn("cart persist failed", zap.Error(err))
	}
	return a.snapshot()
}

func (a *Aggregator) snapshot() Snapshot {
	c := a.cart.Clone()
	totals := pricing.Compute(c.Items, c.DiscountApplied)

	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}

	return Snapshot{
		Items:           c.Items,
		DiscountApplied: c.DiscountApplied,
		Totals:          totals,
		Display:         totals.Display(),
		ItemCount:       count,
	}
}

// sanitize folds duplicate lines and drops non-positive quantities from a stored cart.
func sanitize(c domain.Cart) domain.Cart {
	out := domain.Cart{DiscountApplied: c.DiscountApplied}
	for _, item := range c.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		if i := out.Find(item.ProductID); i >= 0 {
			out.Items[i].Quantity += item.Quantity
			continue
		}
		out.Items = append(out.Items, item)
	}
	if out.IsEmpty() {
		out.DiscountApplied = false
	}
	return out
}
