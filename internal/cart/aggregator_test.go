package cart

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/fjod/go_pos/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testKey = "woofcrafts_cart:session-1"

func newTestAggregator(t *testing.T) (*Aggregator, *store.MemoryStore) {
	s := store.NewMemoryStore(0)
	t.Cleanup(s.Close)
	return NewAggregator(testKey, newCatalogMock(), s, zap.NewNop()), s
}

func TestAddItem_NewAndExisting(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()

	_, err := a.AddItem(ctx, "A")
	require.NoError(t, err)
	snap, err := a.AddItem(ctx, "A")
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, "Alpha", snap.Items[0].Name)
	assert.Equal(t, "a.png", snap.Items[0].Image)
	assert.Equal(t, 2, snap.ItemCount)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")

	snap, err := a.AddItem(ctx, "Z")

	assert.ErrorIs(t, err, ErrProductNotFound)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()

	for _, id := range []string{"B", "A", "B", "C"} {
		_, err := a.AddItem(ctx, id)
		require.NoError(t, err)
	}

	snap := a.Snapshot()
	require.Len(t, snap.Items, 3)
	assert.Equal(t, "B", snap.Items[0].ProductID)
	assert.Equal(t, "A", snap.Items[1].ProductID)
	assert.Equal(t, "C", snap.Items[2].ProductID)
}

func TestUpdateQuantity(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")

	snap := a.UpdateQuantity(ctx, "A", 3)
	assert.Equal(t, 4, snap.Items[0].Quantity)

	snap = a.UpdateQuantity(ctx, "A", -4)
	assert.Empty(t, snap.Items)

	snap = a.UpdateQuantity(ctx, "missing", 1)
	assert.Empty(t, snap.Items)
}

func TestUpdateQuantity_MinusOneOnSingleRemovesLine(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	_, _ = a.AddItem(ctx, "B")

	snap := a.UpdateQuantity(ctx, "A", -1)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "B", snap.Items[0].ProductID)
}

func TestRemoveItem(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	_, _ = a.AddItem(ctx, "B")

	snap := a.RemoveItem(ctx, "A")
	require.Len(t, snap.Items, 1)

	snap = a.RemoveItem(ctx, "A")
	assert.Len(t, snap.Items, 1)
}

func TestNoDuplicateProductIDs(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()

	ops := []func(){
		func() { _, _ = a.AddItem(ctx, "A") },
		func() { _, _ = a.AddItem(ctx, "B") },
		func() { a.UpdateQuantity(ctx, "A", -1) },
		func() { _, _ = a.AddItem(ctx, "A") },
		func() { _, _ = a.AddItem(ctx, "A") },
		func() { a.RemoveItem(ctx, "B") },
		func() { _, _ = a.AddItem(ctx, "B") },
		func() { a.UpdateQuantity(ctx, "B", 2) },
	}
	for _, op := range ops {
		op()
		seen := map[string]bool{}
		for _, item := range a.Snapshot().Items {
			assert.False(t, seen[item.ProductID], "duplicate line for %s", item.ProductID)
			assert.Positive(t, item.Quantity)
			seen[item.ProductID] = true
		}
	}
}

func TestDiscount(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()

	snap := a.ApplyDiscount(ctx)
	assert.False(t, snap.DiscountApplied, "empty cart cannot take a discount")

	_, _ = a.AddItem(ctx, "A")
	_, _ = a.AddItem(ctx, "B")
	_ = a.UpdateQuantity(ctx, "B", 1)

	snap = a.ApplyDiscount(ctx)
	again := a.ApplyDiscount(ctx)

	assert.True(t, snap.DiscountApplied)
	assert.Equal(t, snap.Totals, again.Totals)
	assert.Equal(t, "$18.00", snap.Display.Subtotal)
	assert.Equal(t, "$0.90", snap.Display.DiscountAmount)
	assert.Equal(t, "$17.10", snap.Display.Total)
	assert.Equal(t, pricing.DiscountPercent, snap.Totals.DiscountPercent)

	snap = a.ClearDiscount(ctx)
	assert.False(t, snap.DiscountApplied)
	assert.True(t, snap.Totals.Total.Equal(decimal.NewFromInt(18)))
}

func TestReset_ClearsItemsAndDiscount(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	a.ApplyDiscount(ctx)

	snap := a.Reset(ctx)

	assert.Empty(t, snap.Items)
	assert.False(t, snap.DiscountApplied)
	assert.True(t, snap.Totals.Total.IsZero())
}

func TestExactSubtotal(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, _ = a.AddItem(ctx, "C")
	}

	assert.True(t, a.Snapshot().Totals.Subtotal.Equal(decimal.RequireFromString("1.00")))
}

func TestPersistAndLoad(t *testing.T) {
	a, s := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	_, _ = a.AddItem(ctx, "B")
	a.ApplyDiscount(ctx)

	raw, err := s.Get(ctx, testKey)
	require.NoError(t, err)
	var saved domain.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.True(t, saved.DiscountApplied)
	assert.Len(t, saved.Items, 2)

	restored := NewAggregator(testKey, newCatalogMock(), s, zap.NewNop())
	snap := restored.Load(ctx)
	assert.Len(t, snap.Items, 2)
	assert.True(t, snap.DiscountApplied)
}

func TestLoad_CorruptOrDuplicated(t *testing.T) {
	s := store.NewMemoryStore(0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, testKey, "{broken"))
	a := NewAggregator(testKey, newCatalogMock(), s, zap.NewNop())
	assert.Empty(t, a.Load(ctx).Items)

	require.NoError(t, s.Set(ctx, testKey, `{"items":[
		{"productId":"A","name":"Alpha","price":"8","quantity":1},
		{"productId":"A","name":"Alpha","price":"8","quantity":2},
		{"productId":"B","name":"Beta","price":"5","quantity":0}
	],"discountApplied":true}`))
	snap := a.Load(ctx)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.True(t, snap.DiscountApplied)
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := NewAggregator(testKey, newCatalogMock(), failingStore{}, zap.New(core))
	ctx := context.Background()

	snap, err := a.AddItem(ctx, "A")

	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 1, logs.FilterMessage("cart persist failed").Len())
	assert.Empty(t, a.Load(ctx).Items)
}

func TestConcurrentAdds(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.AddItem(ctx, "A")
		}()
	}
	wg.Wait()

	snap := a.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 50, snap.Items[0].Quantity)
}

func TestUpdateQuantity_LargeDeltaSaturates(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")

	snap := a.UpdateQuantity(ctx, "A", math.MaxInt)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, math.MaxInt, snap.Items[0].Quantity)

	snap = a.UpdateQuantity(ctx, "A", 1)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, math.MaxInt, snap.Items[0].Quantity)
}

func TestRemoveLastLine_ClearsDiscount(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	a.ApplyDiscount(ctx)

	snap := a.UpdateQuantity(ctx, "A", -1)
	assert.False(t, snap.DiscountApplied)

	snap, err := a.AddItem(ctx, "B")
	require.NoError(t, err)
	assert.False(t, snap.DiscountApplied)
}

func TestConsume_KeepsUnorderedLines(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	ordered := a.ApplyDiscount(ctx).Items

	_, _ = a.AddItem(ctx, "A")
	_, _ = a.AddItem(ctx, "B")

	snap := a.Consume(ctx, ordered)

	require.Len(t, snap.Items, 2)
	assert.Equal(t, "A", snap.Items[0].ProductID)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, "B", snap.Items[1].ProductID)
	assert.False(t, snap.DiscountApplied)
}

func TestConsume_UnchangedCartEmpties(t *testing.T) {
	a, _ := newTestAggregator(t)
	ctx := context.Background()
	_, _ = a.AddItem(ctx, "A")
	_, _ = a.AddItem(ctx, "B")
	ordered := a.ApplyDiscount(ctx).Items

	snap := a.Consume(ctx, ordered)

	assert.Empty(t, snap.Items)
	assert.False(t, snap.DiscountApplied)
}
