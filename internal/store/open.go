package store

import (
	"context"
	"fmt"
	"log/slog"

	"draftdesk/internal/cache"
	"draftdesk/internal/config"
	"draftdesk/internal/database"
	"draftdesk/internal/observability"
)

// Open builds the Store selected by cfg.StoreDriver. Outside production an
// unreachable Redis degrades to the memory driver; SQL connection failures
// are always returned.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.IsProduction() {
				return nil, err
			}
			observability.Logger.WarnContext(ctx, "Redis unavailable, continuing with in-memory store",
				slog.String("error", err.Error()))
			return NewMemory(), nil
		}
		return NewRedis(client), nil
	case "sqlite", "postgres":
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return NewSQL(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
