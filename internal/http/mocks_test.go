package http

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/domain"
)

type EmailMock struct {
	mu      sync.Mutex
	err     error
	sent    []domain.OrderRecord
	started chan struct{}
	block   chan struct{}
}

func (m *EmailMock) SendOrderEmail(_ context.Context, order domain.OrderRecord) (string, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, order)
	return "<msg-1@woofcrafts>", nil
}

type ProductStoreMock struct {
	saved   []domain.Product
	deleted []string
	err     error
}

func (m *ProductStoreMock) Upsert(_ context.Context, p domain.Product) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	if p.Name == "" {
		return domain.Product{}, catalog.ErrInvalidProduct
	}
	if p.ID == "" {
		p.ID = "prod_new"
	}
	m.saved = append(m.saved, p)
	return p, nil
}

func (m *ProductStoreMock) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if id == "prod_missing" {
		return catalog.ErrProductNotFound
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type CatalogMock struct {
	products   []domain.Product
	refreshErr error
	refreshes  int
}

func (c *CatalogMock) Products() []domain.Product {
	return c.products
}

func (c *CatalogMock) Refresh(context.Context) error {
	c.refreshes++
	return c.refreshErr
}

var errSMTP = errors.New("smtp: connection refused")
