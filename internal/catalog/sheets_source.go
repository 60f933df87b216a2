package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/sheets"
	"github.com/shopspring/decimal"
	gsheets "google.golang.org/api/sheets/v4"
)

// SheetsSource reads product rows (id, name, price, category, image) from a spreadsheet.
type SheetsSource struct {
	svc           *gsheets.Service
	spreadsheetID string
	readRange     string
}

func NewSheetsSource(svc *gsheets.Service, spreadsheetID, readRange string) *SheetsSource {
	return &SheetsSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}
}

func (s *SheetsSource) Name() string {
	return "sheets"
}

func (s *SheetsSource) Load(ctx context.Context) ([]domain.Product, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read products sheet: %w", err)
	}

	products := make([]domain.Product, 0, len(resp.Values))
	for _, row := range resp.Values {
		p, ok := parseProductRow(row)
		if !ok {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// parseProductRow drops rows without an id or name. An unreadable price becomes zero.
func parseProductRow(row []interface{}) (domain.Product, bool) {
	id := strings.TrimSpace(sheets.Cell(row, 0))
	name := strings.TrimSpace(sheets.Cell(row, 1))
	if id == "" || name == "" {
		return domain.Product{}, false
	}

	price, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(sheets.Cell(row, 2)), "$"))
	if err != nil || price.IsNegative() {
		price = decimal.Zero
	}

	return domain.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Category: strings.TrimSpace(sheets.Cell(row, 3)),
		Image:    strings.TrimSpace(sheets.Cell(row, 4)),
	}, true
}
