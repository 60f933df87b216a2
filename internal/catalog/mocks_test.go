package catalog

import (
	"context"
	"sync/atomic"

	"github.com/fjod/go_pos/internal/domain"
)

type sourceMock struct {
	name     string
	products []domain.Product
	err      error
	calls    atomic.Int32
}

func (s *sourceMock) Name() string {
	return s.name
}

func (s *sourceMock) Load(_ context.Context) ([]domain.Product, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}
