package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/ratelimit"
	"draftdesk/internal/repository"
	"draftdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store     store.Store
	posts     repository.PostRepository
	users     repository.UserRepository
	sessions  repository.SessionRepository
	errorLogs repository.ErrorLogRepository
	limiter   *ratelimit.Limiter
	guard     *Guard
	clock     *testClock
}

func newFixture(t *testing.T, limit int) *fixture {
	t.Helper()
	s := store.NewMemory()
	clock := &testClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	errorLogs := repository.NewErrorLogRepository(s)

	limiter := ratelimit.New(repository.NewRateLimitRepository(s), "test", limit, time.Hour)
	limiter.Now = clock.now

	return &fixture{
		store:     s,
		posts:     repository.NewPostRepository(s),
		users:     repository.NewUserRepository(s),
		sessions:  repository.NewSessionRepository(s),
		errorLogs: errorLogs,
		limiter:   limiter,
		guard: &Guard{
			Limiter: limiter,
			Tracker: observability.NewErrorTracker(errorLogs),
		},
		clock: clock,
	}
}

func (f *fixture) postService() *PostService {
	svc := NewPostService(f.posts, f.guard)
	svc.now = f.clock.now
	return svc
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

var (
	alice = &models.User{ID: "alice", Email: "alice@example.com", Role: models.RoleUser}
	bob   = &models.User{ID: "bob", Email: "bob@example.com", Role: models.RoleUser}
	admin = &models.User{ID: "root", Email: "root@example.com", Role: models.RoleAdmin}
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	updateFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, string) (*models.Post, error)
	listByUserFn func(context.Context, string) ([]*models.Post, error)
	listAllFn    func(context.Context) ([]*models.Post, error)
	deleteFn     func(context.Context, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.listAllFn(ctx)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func failingPostRepo(err error) *postRepoStub {
	return &postRepoStub{
		createFn:     func(context.Context, *models.Post) error { return err },
		updateFn:     func(context.Context, *models.Post) error { return err },
		getByIDFn:    func(context.Context, string) (*models.Post, error) { return nil, err },
		listByUserFn: func(context.Context, string) ([]*models.Post, error) { return nil, err },
		listAllFn:    func(context.Context) ([]*models.Post, error) { return nil, err },
		deleteFn:     func(context.Context, string) error { return err },
	}
}

var errStoreDown = errors.New("store unavailable")
