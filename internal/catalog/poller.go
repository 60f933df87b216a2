package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller refreshes the catalog on a fixed interval so edits made elsewhere show up.
type Poller struct {
	catalog  *Catalog
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(catalog *Catalog, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		catalog:  catalog,
		interval: interval,
		logger:   logger.Named("catalog_poller"),
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.catalog.Refresh(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("catalog sync incomplete", zap.Error(err))
			}
		}
	}
}
