package storage

import (
	"context"
	"fmt"

	"github.com/realrushil/website/internal/config"
	"github.com/realrushil/website/internal/core/ports"
	"github.com/realrushil/website/internal/logging"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Open builds the repository selected by cfg. A redis backend that cannot be
// reached at startup is still returned; the store facade degrades reads and
// writes until it comes back.
func Open(ctx context.Context, cfg config.StoreConfig) (ports.ProbeRepository, error) {
	switch cfg.Backend {
	case BackendRedis:
		repo, err := OpenRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			logging.Warn().Err(err).Msg("redis not reachable at startup, continuing")
		}
		return repo, nil
	case BackendSQLite:
		return NewSQLiteRepository(cfg.SQLitePath)
	case BackendMemory, "":
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
