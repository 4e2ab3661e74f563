package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hongminglow/orgs-be/internal/config"
	"github.com/hongminglow/orgs-be/internal/storage"
	"github.com/hongminglow/orgs-be/internal/storage/memory"
	"github.com/hongminglow/orgs-be/internal/storage/postgres"
)

type Globals struct {
	Version string
}

// openStore selects the storage driver named in cfg.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
