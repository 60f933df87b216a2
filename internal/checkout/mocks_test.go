package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/shopspring/decimal"
)

type MockCart struct {
	mu         sync.Mutex
	items      []domain.LineItem
	discount   bool
	ConsumeCalls int
}

func newMockCart(discount bool, items ...domain.LineItem) *MockCart {
	return &MockCart{items: items, discount: discount}
}

func (m *MockCart) Snapshot() cart.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]domain.LineItem(nil), m.items...)
	totals := pricing.Compute(items, m.discount)
	return cart.Snapshot{Items: items, DiscountApplied: m.discount, Totals: totals, Display: totals.Display()}
}

func (m *MockCart) Consume(_ context.Context, ordered []domain.LineItem) cart.Snapshot {
	m.mu.Lock()
	for _, o := range ordered {
		for i := range m.items {
			if m.items[i].ProductID == o.ProductID {
				m.items[i].Quantity -= o.Quantity
			}
		}
	}
	kept := m.items[:0]
	for _, item := range m.items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	m.items = kept
	m.discount = false
	m.ConsumeCalls++
	m.mu.Unlock()
	return m.Snapshot()
}

func (m *MockCart) Add(item domain.LineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

type MockEmail struct {
	mu      sync.Mutex
	Err     error
	Block   chan struct{}
	Started chan struct{}
	Sent    []domain.OrderRecord
}

func (m *MockEmail) SendOrderEmail(ctx context.Context, order domain.OrderRecord) (string, error) {
	if m.Started != nil {
		close(m.Started)
	}
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Sent = append(m.Sent, order)
	return "<" + order.OrderID + "@woofcrafts>", nil
}

type MockOrderLogger struct {
	mu     sync.Mutex
	Err    error
	Block  chan struct{}
	Logged []domain.OrderRecord
	CtxErr error
}

func (m *MockOrderLogger) LogOrder(ctx context.Context, order domain.OrderRecord) error {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CtxErr = ctx.Err()
	m.Logged = append(m.Logged, order)
	return m.Err
}

func (m *MockOrderLogger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Logged)
}

func lineA() domain.LineItem {
	return domain.LineItem{ProductID: "A", Name: "Alpha", Price: decimal.NewFromInt(8), Quantity: 1}
}

func lineB() domain.LineItem {
	return domain.LineItem{ProductID: "B", Name: "Beta", Price: decimal.NewFromInt(5), Quantity: 2}
}
