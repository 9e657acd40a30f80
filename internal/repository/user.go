package repository

import (
	"context"
	"strings"
	"sync"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/store"
)

// UserRepository keeps the roster of users who have signed in.
type UserRepository interface {
	Upsert(ctx context.Context, entry models.RosterEntry) error
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

type userRepository struct {
	store  store.Store
	mu     sync.Mutex
	logger *observability.RepoLogger
}

// NewUserRepository creates a roster repository over s.
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{
		store:  s,
		logger: observability.NewRepoLogger(store.TableUsers),
	}
}

func (r *userRepository) load(ctx context.Context, op string) ([]models.RosterEntry, error) {
	entries, err := store.ReadTable[models.RosterEntry](ctx, r.store, store.TableUsers)
	if err != nil {
		r.logger.LogError(ctx, err, op)
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

// Upsert replaces the entry with the same email, or appends a new one.
func (r *userRepository) Upsert(ctx context.Context, entry models.RosterEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx, "upsert")
	if err != nil {
		return err
	}
	replaced := false
	for i := range entries {
		if strings.EqualFold(entries[i].Email, entry.Email) {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	if err := store.WriteTable(ctx, r.store, store.TableUsers, entries); err != nil {
		r.logger.LogError(ctx, err, "upsert")
		return err
	}
	r.logger.LogWrite(ctx, "upsert", map[string]any{"user_id": entry.ID})
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	entries, err := r.load(ctx, "list")
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.User)
	}
	return out, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	entries, err := r.load(ctx, "get")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			u := e.User
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx, "update_role")
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Role = role
			if err := store.WriteTable(ctx, r.store, store.TableUsers, entries); err != nil {
				r.logger.LogError(ctx, err, "update_role")
				return nil, err
			}
			r.logger.LogWrite(ctx, "update_role", map[string]any{"user_id": id, "role": string(role)})
			u := entries[i].User
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}
