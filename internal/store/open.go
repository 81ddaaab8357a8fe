package store

import (
	"context"
	"fmt"

	"github.com/bizlens/bizcalc/internal/config"
)

// Open builds the repository selected by settings.Store.
func Open(ctx context.Context, settings config.Settings) (Repository, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	switch settings.Store {
	case config.StoreMemory:
		return NewMemoryRepository(), nil
	case config.StoreSQLite:
		repo, err := NewSQLiteRepository(settings.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return repo, nil
	case config.StorePostgres:
		repo, err := NewPostgresRepository(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return repo, nil
	case config.StoreRedis:
		repo, err := NewRedisRepository(ctx, settings.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store %q", settings.Store)
}
