// Package catalog loads the product list from the built-in defaults and any configured
// sources, and serves lookups to the cart.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]domain.Product

	sources  []Source
	cache    store.Store
	cacheKey string
	logger   *zap.Logger
	sfg      singleflight.Group
}

// New returns a catalog holding only the defaults until the first Refresh.
// cache may be nil.
func New(cache store.Store, cacheKey string, logger *zap.Logger, sources ...Source) *Catalog {
	c := &Catalog{
		sources:  sources,
		cache:    cache,
		cacheKey: cacheKey,
		logger:   logger.Named("catalog"),
	}
	defaults, _ := merge(Defaults())
	c.swap(defaults)
	return c
}

func (c *Catalog) Product(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Products returns the catalog in display order.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Refresh reloads every source and swaps in the merged list. Failed sources are skipped,
// with the cached snapshot merged in for them; the returned error lists those failures
// but the catalog is updated regardless.
func (c *Catalog) Refresh(ctx context.Context) error {
	_, err, _ := c.sfg.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Catalog) refresh(ctx context.Context) error {
	lists := [][]domain.Product{Defaults()}
	var failures []error

	for _, src := range c.sources {
		products, err := src.Load(ctx)
		if err != nil {
			c.logger.Warn("catalog source failed", zap.String("source", src.Name()), zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		lists = append(lists, products)
	}

	if len(failures) > 0 {
		if cached, err := c.loadCache(ctx); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				c.logger.Warn("catalog cache read failed", zap.Error(err))
			}
		} else {
			lists = append(lists, cached)
		}
	}

	merged, dropped := merge(lists...)
	if len(dropped) > 0 {
		c.logger.Warn("invalid catalog entries dropped", zap.Strings("ids", dropped))
	}
	c.swap(merged)
	c.saveCache(ctx, merged)

	c.logger.Debug("catalog refreshed", zap.Int("products", len(merged)), zap.Int("failed_sources", len(failures)))
	return errors.Join(failures...)
}

func (c *Catalog) swap(products []domain.Product) {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.mu.Unlock()
}

func (c *Catalog) loadCache(ctx context.Context) ([]domain.Product, error) {
	if c.cache == nil {
		return nil, store.ErrNotFound
	}
	raw, err := c.cache.Get(ctx, c.cacheKey)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, fmt.Errorf("unmarshal cached catalog failed: %w", err)
	}
	return products, nil
}

func (c *Catalog) saveCache(ctx context.Context, products []domain.Product) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("marshal catalog failed", zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey, string(data)); err != nil {
		c.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

// merge concatenates lists keeping the first product seen for each id. Invalid entries
// are left out and their ids returned as dropped.
func merge(lists ...[]domain.Product) (out []domain.Product, dropped []string) {
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, p := range list {
			if !p.Valid() {
				dropped = append(dropped, p.ID)
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			if p.Category == "" {
				p.Category = domain.DefaultCategory
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out, dropped
}
