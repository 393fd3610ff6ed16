// cmd/tools/fund-catalog/store.go
package main

import (
	"context"
	"fmt"

	"lead-qualifier/internal/catalog"
	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/database"
)

// openStore connects to the catalog backend named in cfg.
func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, func(), error) {
	switch cfg.Catalog.Backend {
	case config.BackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store := catalog.NewPostgresStore(pg.GetDB())
		if err := store.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return store, func() { pg.Close() }, nil

	case config.BackendRedis:
		rc, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewRedisStore(rc.GetClient(), cfg.Catalog.KeyPrefix), func() { rc.Close() }, nil
	}
	return nil, nil, fmt.Errorf("catalog backend %q is not persistent; nothing to import into", cfg.Catalog.Backend)
}
