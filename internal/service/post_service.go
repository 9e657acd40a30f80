package service

import (
	"context"
	"strings"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/repository"

	"github.com/google/uuid"
)

const (
	maxTitleLen   = 300
	maxContentLen = 100000
)

type PostService struct {
	repo  repository.PostRepository
	guard *Guard
	now   func() time.Time
}

// SavePostInput carries the fields of a create or update. Nil fields are
// left unchanged on update.
type SavePostInput struct {
	ID               string     `json:"id,omitempty"`
	Title            *string    `json:"title"`
	Content          *string    `json:"content"`
	Topic            *string    `json:"topic"`
	Style            *string    `json:"style"`
	IsPublished      *bool      `json:"is_published"`
	PublishDate      *time.Time `json:"publish_date"`
	ClearPublishDate bool       `json:"clear_publish_date"`
}

func NewPostService(repo repository.PostRepository, guard *Guard) *PostService {
	if guard == nil {
		guard = &Guard{}
	}
	return &PostService{repo: repo, guard: guard, now: time.Now}
}

func (in SavePostInput) validate(creating bool) error {
	if creating && (in.Title == nil || strings.TrimSpace(*in.Title) == "") {
		return models.NewValidationError("Title is required")
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return models.NewValidationError("Title cannot be empty")
		}
		if len(*in.Title) > maxTitleLen {
			return models.NewValidationError("Title too long (max 300 characters)")
		}
	}
	if in.Content != nil && len(*in.Content) > maxContentLen {
		return models.NewValidationError("Content too long (max 100000 characters)")
	}
	return nil
}

// Save creates a post when in.ID is empty and merges into the existing post
// otherwise.
func (s *PostService) Save(ctx context.Context, caller *models.User, in SavePostInput) (*models.Post, error) {
	const op = "post.save"
	if err := s.guard.enter(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := in.validate(in.ID == ""); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	now := s.now().UTC()

	if in.ID == "" {
		return s.create(ctx, op, caller, uuid.NewString(), in, now)
	}

	post, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := authorizeOwner(caller, post); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	in.apply(post)
	touch(post, now)
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return post, nil
}

// Create stores a new post. in.ID may carry the id of an unsaved draft
// returned by ContentService.Generate, so the id a client already holds
// becomes the stored one; it must be a uuid no stored post uses. An empty
// in.ID gets a fresh uuid.
func (s *PostService) Create(ctx context.Context, caller *models.User, in SavePostInput) (*models.Post, error) {
	const op = "post.create"
	if err := s.guard.enter(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := in.validate(true); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	id := uuid.NewString()
	if in.ID != "" {
		parsed, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, s.guard.fail(ctx, op, models.NewValidationError("Invalid post id"))
		}
		id = parsed.String()
	}
	return s.create(ctx, op, caller, id, in, s.now().UTC())
}

func (s *PostService) create(ctx context.Context, op string, caller *models.User, id string, in SavePostInput, now time.Time) (*models.Post, error) {
	post := &models.Post{
		ID:        id,
		UserID:    caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(post)
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return post, nil
}

func (in SavePostInput) apply(p *models.Post) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Topic != nil {
		p.Topic = *in.Topic
	}
	if in.Style != nil {
		p.Style = *in.Style
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	if in.ClearPublishDate {
		p.PublishDate = nil
	} else if in.PublishDate != nil {
		d := in.PublishDate.UTC()
		p.PublishDate = &d
	}
}

// touch advances UpdatedAt strictly, even when the clock has not moved.
func touch(p *models.Post, now time.Time) {
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Nanosecond)
	}
	p.UpdatedAt = now
}

// ListByUser lists userID's posts in insertion order. An empty userID means
// the caller. Only admins may list other users.
func (s *PostService) ListByUser(ctx context.Context, caller *models.User, userID string) ([]*models.Post, error) {
	const op = "post.list_by_user"
	if err := s.guard.read(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID && !caller.IsAdmin() {
		return nil, s.guard.fail(ctx, op, models.NewUnauthorizedError("Cannot list another user's posts"))
	}
	posts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return posts, nil
}

func (s *PostService) ListAll(ctx context.Context, caller *models.User) ([]*models.Post, error) {
	const op = "post.list_all"
	if err := s.guard.read(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := models.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return posts, nil
}

// GetByID returns the post to its owner and admins. Anyone else, including
// anonymous callers, only sees it while it is visible; otherwise it is
// reported as not found.
func (s *PostService) GetByID(ctx context.Context, caller *models.User, id string) (*models.Post, error) {
	const op = "post.get"
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if caller != nil && (post.OwnedBy(caller.ID) || caller.IsAdmin()) {
		return post, nil
	}
	if !post.IsVisible(s.now()) {
		return nil, s.guard.fail(ctx, op, models.NewNotFoundError("Post", id))
	}
	return post, nil
}

func (s *PostService) SetPublished(ctx context.Context, caller *models.User, id string, published bool) (*models.Post, error) {
	return s.mutate(ctx, "post.set_published", caller, id, func(p *models.Post) {
		p.IsPublished = published
	})
}

// Schedule sets the publish date, or clears it when at is nil.
func (s *PostService) Schedule(ctx context.Context, caller *models.User, id string, at *time.Time) (*models.Post, error) {
	return s.mutate(ctx, "post.schedule", caller, id, func(p *models.Post) {
		if at == nil {
			p.PublishDate = nil
			return
		}
		d := at.UTC()
		p.PublishDate = &d
	})
}

func (s *PostService) mutate(ctx context.Context, op string, caller *models.User, id string, fn func(*models.Post)) (*models.Post, error) {
	if err := s.guard.enter(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := authorizeOwner(caller, post); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	fn(post)
	touch(post, s.now().UTC())
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, caller *models.User, id string) error {
	const op = "post.delete"
	if err := s.guard.enter(ctx, caller); err != nil {
		return s.guard.fail(ctx, op, err)
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.guard.fail(ctx, op, err)
	}
	if err := authorizeOwner(caller, post); err != nil {
		return s.guard.fail(ctx, op, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.guard.fail(ctx, op, err)
	}
	return nil
}
