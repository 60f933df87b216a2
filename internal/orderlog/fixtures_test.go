package orderlog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

func sampleOrder() domain.OrderRecord {
	return domain.OrderRecord{
		OrderID:       "WC-1700000000000-ABCD1234",
		CustomerName:  "Mika",
		CustomerEmail: "mika@example.com",
		CustomerPhone: "+65 8123 4567",
		Items: []domain.OrderItem{
			{Name: "3 Charms", Quantity: 1, Price: decimal.NewFromInt(8), Subtotal: decimal.NewFromInt(8)},
			{Name: "Additional NFC (5 SGD)", Quantity: 2, Price: decimal.NewFromInt(5), Subtotal: decimal.NewFromInt(10)},
		},
		Subtotal:        decimal.NewFromInt(18),
		DiscountAmount:  decimal.RequireFromString("0.9"),
		DiscountPercent: 5,
		Total:           decimal.RequireFromString("17.1"),
		PlacedAt:        time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
	}
}

type loggerMock struct {
	err   error
	calls int
}

func (l *loggerMock) LogOrder(context.Context, domain.OrderRecord) error {
	l.calls++
	return l.err
}

type writerMock struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *writerMock) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writerMock) Close() error {
	w.closed = true
	return nil
}

var errBoom = errors.New("boom")
