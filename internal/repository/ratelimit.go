package repository

import (
	"context"
	"sync"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/store"
)

// RateLimitFunc receives the stored state for a key (nil when absent) and
// returns the next state and whether it must be written.
type RateLimitFunc func(cur *models.RateLimitState) (next models.RateLimitState, write bool)

// RateLimitRepository persists rate limit windows for every limiter key in
// one table. Writes hold the repository lock, so limiters sharing a
// repository never overwrite each other's charges.
type RateLimitRepository interface {
	Get(ctx context.Context, key string) (*models.RateLimitState, bool, error)
	Put(ctx context.Context, state models.RateLimitState) error
	// Update runs the whole read-modify-write for key under the lock.
	Update(ctx context.Context, key string, fn RateLimitFunc) (models.RateLimitState, error)
}

type rateLimitRepository struct {
	store  store.Store
	mu     sync.Mutex
	logger *observability.RepoLogger
}

// NewRateLimitRepository creates a rate limit repository over s.
func NewRateLimitRepository(s store.Store) RateLimitRepository {
	return &rateLimitRepository{
		store:  s,
		logger: observability.NewRepoLogger(store.TableRateLimits),
	}
}

func (r *rateLimitRepository) load(ctx context.Context, op string) ([]models.RateLimitState, error) {
	states, err := store.ReadTable[models.RateLimitState](ctx, r.store, store.TableRateLimits)
	if err != nil {
		r.logger.LogError(ctx, err, op)
		return nil, models.NewInternalError(err)
	}
	return states, nil
}

func find(states []models.RateLimitState, key string) int {
	for i := range states {
		if states[i].UserID == key {
			return i
		}
	}
	return -1
}

func (r *rateLimitRepository) Get(ctx context.Context, key string) (*models.RateLimitState, bool, error) {
	states, err := r.load(ctx, "get")
	if err != nil {
		return nil, false, err
	}
	if i := find(states, key); i >= 0 {
		state := states[i]
		return &state, true, nil
	}
	return nil, false, nil
}

func (r *rateLimitRepository) Put(ctx context.Context, state models.RateLimitState) error {
	_, err := r.Update(ctx, state.UserID, func(*models.RateLimitState) (models.RateLimitState, bool) {
		return state, true
	})
	return err
}

func (r *rateLimitRepository) Update(ctx context.Context, key string, fn RateLimitFunc) (models.RateLimitState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	states, err := r.load(ctx, "update")
	if err != nil {
		return models.RateLimitState{}, err
	}

	i := find(states, key)
	var cur *models.RateLimitState
	if i >= 0 {
		existing := states[i]
		cur = &existing
	}

	next, write := fn(cur)
	if !write {
		return next, nil
	}
	next.UserID = key
	if i >= 0 {
		states[i] = next
	} else {
		states = append(states, next)
	}

	if err := store.WriteTable(ctx, r.store, store.TableRateLimits, states); err != nil {
		r.logger.LogError(ctx, err, "update")
		return next, models.NewInternalError(err)
	}
	return next, nil
}
