package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/es"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/pg"
	pkgserver "github.com/DjordjeVuckovic/alumni-memories/pkg/server"
)

// Backend bundles a store with its health check and cleanup.
type Backend struct {
	Store  storage.Store
	Health pkgserver.HealthChecker
	// Subscriber is nil when the backend has no change feed.
	Subscriber storage.Subscriber

	close func()
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// NewBackend creates the store selected by cfg.
func NewBackend(ctx context.Context, cfg *StorageConfig) (*Backend, error) {
	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		s, err := pg.NewStorer(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &Backend{Store: s, Health: pg.NewHealthChecker(pool), Subscriber: s, close: pool.Close}, nil

	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		s, err := es.NewStorer(ctx, *cfg.Es)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: s, Health: s}, nil

	case storage.InMem:
		s := in_mem.NewInMemStorer()
		return &Backend{Store: s, Health: s, Subscriber: s}, nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}
