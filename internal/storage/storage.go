package storage

import (
	"context"
	"fmt"

	"github.com/marcelsud/book-manager/book"
	"github.com/marcelsud/book-manager/book/postgres"
	"github.com/marcelsud/book-manager/book/sqlite"
	"github.com/marcelsud/book-manager/config"
)

// Open connects to the repository selected by DB_DRIVER and makes sure the books table exists
func Open(ctx context.Context, cfg *config.Config) (book.Repository, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		repo, err := sqlite.NewRepository(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite repository: %w", err)
		}
		return repo, nil
	case config.DriverPostgres:
		repo, err := postgres.NewRepositoryWithPoolConfig(
			ctx,
			cfg.PostgresConnectionString(),
			cfg.PostgresMaxOpenConns,
			cfg.PostgresMaxIdleConns,
			cfg.PostgresConnMaxLifeMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("opening postgres repository: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
}
