// Package bootstrap opens the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"draftdesk/internal/config"
	"draftdesk/internal/observability"
	"draftdesk/internal/repository"
	"draftdesk/internal/seed"
	"draftdesk/internal/store"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty store with demo data outside production.
	SeedDemo bool
	Preset   string
}

// InitRuntime opens the configured store and optionally seeds it.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (store.Store, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store initialization failed: %w", err)
	}

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(ctx, st, opts.Preset); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return st, nil
}

func seedIfEmpty(ctx context.Context, st store.Store, preset string) error {
	posts := repository.NewPostRepository(st)
	existing, err := posts.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		observability.Logger.InfoContext(ctx, "store already has posts, skipping demo seed", slog.Int("posts", len(existing)))
		return nil
	}

	opts := seed.DefaultOptions()
	if preset != "" {
		if opts, err = seed.LoadPreset("", preset); err != nil {
			return err
		}
	}
	_, err = seed.NewFactory(posts, repository.NewUserRepository(st), opts).Run(ctx)
	return err
}
