// Package repository provides table-level data access over the key-value store.
package repository

import (
	"context"
	"sync"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/store"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository
type postRepository struct {
	store  store.Store
	mu     sync.Mutex
	logger *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(s store.Store) PostRepository {
	return &postRepository{
		store:  s,
		logger: observability.NewRepoLogger(store.TablePosts),
	}
}

func (r *postRepository) load(ctx context.Context, op string) ([]models.Post, error) {
	posts, err := store.ReadTable[models.Post](ctx, r.store, store.TablePosts)
	if err != nil {
		r.logger.LogError(ctx, err, op)
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) save(ctx context.Context, op string, posts []models.Post) error {
	if err := store.WriteTable(ctx, r.store, store.TablePosts, posts); err != nil {
		r.logger.LogError(ctx, err, op)
		return err
	}
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx, "create")
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID == post.ID {
			return models.NewValidationError("Post with ID " + post.ID + " already exists")
		}
	}
	posts = append(posts, *post)
	if err := r.save(ctx, "create", posts); err != nil {
		return err
	}
	r.logger.LogWrite(ctx, "create", map[string]any{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx, "update")
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID == post.ID {
			posts[i] = *post
			if err := r.save(ctx, "update", posts); err != nil {
				return err
			}
			r.logger.LogWrite(ctx, "update", map[string]any{"post_id": post.ID})
			return nil
		}
	}
	return models.NewNotFoundError("Post", post.ID)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	posts, err := r.load(ctx, "get")
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.ID == id {
			post := p
			return &post, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := r.load(ctx, "list_by_user")
	if err != nil {
		return nil, err
	}
	out := []*models.Post{}
	for _, p := range posts {
		if p.UserID == userID {
			post := p
			out = append(out, &post)
		}
	}
	return out, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	posts, err := r.load(ctx, "list_all")
	if err != nil {
		return nil, err
	}
	out := make([]*models.Post, 0, len(posts))
	for i := range posts {
		out = append(out, &posts[i])
	}
	return out, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx, "delete")
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID == id {
			posts = append(posts[:i], posts[i+1:]...)
			if err := r.save(ctx, "delete", posts); err != nil {
				return err
			}
			r.logger.LogWrite(ctx, "delete", map[string]any{"post_id": id})
			return nil
		}
	}
	return models.NewNotFoundError("Post", id)
}
