package orderlog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/pricing"
	"github.com/sony/gobreaker/v2"
	gsheets "google.golang.org/api/sheets/v4"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

var sheetHeader = []interface{}{"Timestamp", "Order ID", "Customer Name", "Email", "Phone", "Items", "Total", "Discount"}

// SheetsLogger appends one row per order to a spreadsheet, writing the header row on first use.
type SheetsLogger struct {
	svc           *gsheets.Service
	spreadsheetID string
	appendRange   string
	headerRange   string
	breaker       *gobreaker.CircuitBreaker[struct{}]

	mu            sync.Mutex
	headerChecked bool
}

// NewSheetsLogger appends to appendRange, e.g. "Orders!A:H".
func NewSheetsLogger(svc *gsheets.Service, spreadsheetID, appendRange string, breaker *gobreaker.CircuitBreaker[struct{}]) *SheetsLogger {
	sheet := appendRange
	if i := strings.Index(sheet, "!"); i >= 0 {
		sheet = sheet[:i]
	}
	return &SheetsLogger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		appendRange:   appendRange,
		headerRange:   sheet + "!A1:H1",
		breaker:       breaker,
	}
}

func (s *SheetsLogger) LogOrder(ctx context.Context, order domain.OrderRecord) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		if err := s.ensureHeader(ctx); err != nil {
			return struct{}{}, err
		}

		vr := &gsheets.ValueRange{Values: [][]interface{}{OrderRow(order)}}
		_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.appendRange, vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return struct{}{}, fmt.Errorf("sheets append failed: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (s *SheetsLogger) ensureHeader(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headerChecked {
		return nil
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets header check failed: %w", err)
	}

	if len(resp.Values) == 0 {
		vr := &gsheets.ValueRange{Values: [][]interface{}{sheetHeader}}
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.headerRange, vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("sheets header write failed: %w", err)
		}
	}

	s.headerChecked = true
	return nil
}

// OrderRow renders the order as Timestamp, Order ID, Customer Name, Email, Phone, Items, Total, Discount.
func OrderRow(order domain.OrderRecord) []interface{} {
	items := make([]string, len(order.Items))
	for i, item := range order.Items {
		items[i] = fmt.Sprintf("%s (Qty: %d)", item.Name, item.Quantity)
	}

	discount := "None"
	if order.DiscountAmount.IsPositive() {
		discount = fmt.Sprintf("%d%%", order.DiscountPercent)
	}

	return []interface{}{
		order.PlacedAt.UTC().Format(timestampLayout),
		order.OrderID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		strings.Join(items, "; "),
		pricing.Money(order.Total),
		discount,
	}
}
