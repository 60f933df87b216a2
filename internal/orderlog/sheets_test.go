package orderlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fjod/go_pos/internal/circuitbreaker"
	"github.com/fjod/go_pos/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSheet struct {
	mu        sync.Mutex
	hasHeader bool
	headerPut [][]interface{}
	appended  [][]interface{}
	appends   int
	failAll   bool
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.failAll {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
		return
	}

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	switch {
	case r.Method == http.MethodGet:
		if f.hasHeader {
			_, _ = w.Write([]byte(`{"range":"Orders!A1:H1","values":[["Timestamp"]]}`))
			return
		}
		_, _ = w.Write([]byte(`{"range":"Orders!A1:H1"}`))
	case r.Method == http.MethodPut:
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.headerPut = body.Values
		f.hasHeader = true
		_, _ = w.Write([]byte(`{"updatedRows":1}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.appended = append(f.appended, body.Values...)
		f.appends++
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestSheetsLogger(t *testing.T, fake *fakeSheet) *SheetsLogger {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(), sheets.Config{Endpoint: srv.URL + "/"})
	require.NoError(t, err)

	breaker := circuitbreaker.New[struct{}]("sheets", circuitbreaker.DefaultSettings(), zap.NewNop())
	return NewSheetsLogger(svc, "sheet-1", "Orders!A:H", breaker)
}

func TestSheetsLogger_WritesHeaderOnceAndAppends(t *testing.T) {
	fake := &fakeSheet{}
	l := newTestSheetsLogger(t, fake)
	ctx := context.Background()

	require.NoError(t, l.LogOrder(ctx, sampleOrder()))
	require.NoError(t, l.LogOrder(ctx, sampleOrder()))

	require.Len(t, fake.headerPut, 1)
	assert.Equal(t, "Timestamp", fake.headerPut[0][0])
	assert.Equal(t, "Discount", fake.headerPut[0][7])

	assert.Equal(t, 2, fake.appends)
	row := fake.appended[0]
	require.Len(t, row, 8)
	assert.Equal(t, "2026-01-02T03:04:05.006Z", row[0])
	assert.Equal(t, "WC-1700000000000-ABCD1234", row[1])
	assert.Equal(t, "3 Charms (Qty: 1); Additional NFC (5 SGD) (Qty: 2)", row[5])
	assert.Equal(t, "$17.10", row[6])
	assert.Equal(t, "5%", row[7])
}

func TestSheetsLogger_ExistingHeaderNotRewritten(t *testing.T) {
	fake := &fakeSheet{hasHeader: true}
	l := newTestSheetsLogger(t, fake)

	require.NoError(t, l.LogOrder(context.Background(), sampleOrder()))

	assert.Nil(t, fake.headerPut)
	assert.Equal(t, 1, fake.appends)
}

func TestSheetsLogger_Error(t *testing.T) {
	fake := &fakeSheet{failAll: true}
	l := newTestSheetsLogger(t, fake)

	assert.Error(t, l.LogOrder(context.Background(), sampleOrder()))
}

func TestOrderRow_NoDiscount(t *testing.T) {
	order := sampleOrder()
	order.DiscountAmount = order.DiscountAmount.Sub(order.DiscountAmount)
	order.DiscountPercent = 0

	row := OrderRow(order)

	assert.Equal(t, "None", row[7])
}
