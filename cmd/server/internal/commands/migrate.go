package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/orgs-be/internal/config"
	"github.com/hongminglow/orgs-be/internal/logging"
	"github.com/hongminglow/orgs-be/internal/storage/postgres"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, _ *Globals) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if cfg.StorageDriver != config.DriverPostgres {
		return errors.New("migrate requires STORAGE_DRIVER=postgres")
	}

	store, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	logger.Info().Msg("schema is up to date")
	return nil
}
