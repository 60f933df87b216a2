package cart

import (
	"context"
	"errors"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

type catalogMock map[string]domain.Product

func (c catalogMock) Product(id string) (domain.Product, bool) {
	p, ok := c[id]
	return p, ok
}

func newCatalogMock() catalogMock {
	return catalogMock{
		"A": {ID: "A", Name: "Alpha", Price: decimal.NewFromInt(8), Image: "a.png"},
		"B": {ID: "B", Name: "Beta", Price: decimal.NewFromInt(5)},
		"C": {ID: "C", Name: "Charm", Price: decimal.RequireFromString("0.10")},
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("store down")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("store down")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store down")
}
