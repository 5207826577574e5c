package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
)

// Open selects and initializes the record store backend named by the
// configuration.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (RecordStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Storage.DataDir, logger)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.Postgres, logger)
	case config.DriverRedis:
		return NewRedisStore(cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
