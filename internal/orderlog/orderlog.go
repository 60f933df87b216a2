// Package orderlog records placed orders to secondary systems. Every logger here is
// best-effort: callers log failures and carry on.
package orderlog

import (
	"context"
	"errors"

	"github.com/fjod/go_pos/internal/domain"
)

type Logger interface {
	LogOrder(ctx context.Context, order domain.OrderRecord) error
}

// Nop discards orders.
type Nop struct{}

func (Nop) LogOrder(context.Context, domain.OrderRecord) error {
	return nil
}

// Multi sends each order to every logger in turn and joins their errors.
type Multi []Logger

func (m Multi) LogOrder(ctx context.Context, order domain.OrderRecord) error {
	var errs []error
	for _, l := range m {
		if err := l.LogOrder(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
