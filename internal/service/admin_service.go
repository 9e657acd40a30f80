package service

import (
	"context"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/repository"
)

// syntheticRoster is shown by ListUsers until someone has signed in.
var syntheticRoster = []models.User{
	{ID: "demo-admin", Email: "admin@draftdesk.dev", Name: "Demo Admin", Role: models.RoleAdmin, CreatedAt: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
	{ID: "demo-writer", Email: "writer@draftdesk.dev", Name: "Demo Writer", Role: models.RoleUser, CreatedAt: time.Date(2024, 2, 3, 14, 30, 0, 0, time.UTC)},
	{ID: "demo-editor", Email: "editor@draftdesk.dev", Name: "Demo Editor", Role: models.RoleUser, CreatedAt: time.Date(2024, 3, 21, 11, 15, 0, 0, time.UTC)},
}

// AdminService serves the admin dashboard.
type AdminService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	sessions  repository.SessionRepository
	errorLogs repository.ErrorLogRepository
	guard     *Guard
	now       func() time.Time
}

func NewAdminService(
	posts repository.PostRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	errorLogs repository.ErrorLogRepository,
	guard *Guard,
) *AdminService {
	if guard == nil {
		guard = &Guard{}
	}
	return &AdminService{
		posts:     posts,
		users:     users,
		sessions:  sessions,
		errorLogs: errorLogs,
		guard:     guard,
		now:       time.Now,
	}
}

func (s *AdminService) authorize(ctx context.Context, caller *models.User) error {
	if err := s.guard.read(ctx, caller); err != nil {
		return err
	}
	return models.RequireRole(caller, models.RoleAdmin)
}

// GetStats summarizes the posts table. TotalUsers counts distinct post
// owners.
func (s *AdminService) GetStats(ctx context.Context, caller *models.User) (*models.AdminStats, error) {
	const op = "admin.stats"
	if err := s.authorize(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	now := s.now()
	owners := make(map[string]struct{})
	stats := &models.AdminStats{TotalPosts: len(posts)}
	for _, p := range posts {
		owners[p.UserID] = struct{}{}
		if p.IsPublished {
			stats.PublishedPosts++
		}
		if p.IsScheduled(now) {
			stats.ScheduledPosts++
		}
	}
	stats.TotalUsers = len(owners)
	return stats, nil
}

// ListUsers returns the roster, or the synthetic roster when it is empty.
func (s *AdminService) ListUsers(ctx context.Context, caller *models.User) ([]models.User, error) {
	const op = "admin.list_users"
	if err := s.authorize(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if len(users) == 0 {
		return append([]models.User(nil), syntheticRoster...), nil
	}
	return users, nil
}

// UpdateUserRole changes userID's role. When userID is the caller, the
// session copy in sid is updated as well.
//
// For any other user only the roster entry changes. That is a placeholder
// role change: live sessions keep the role they logged in with, and the next
// login derives the role from ADMIN_EMAILS again.
func (s *AdminService) UpdateUserRole(ctx context.Context, caller *models.User, sid, userID, rawRole string) (*models.User, error) {
	const op = "admin.update_role"
	if err := s.guard.enter(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := models.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if rawRole == "" {
		return nil, s.guard.fail(ctx, op, models.NewValidationError("Role is required"))
	}
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	if userID != caller.ID {
		updated, err := s.users.UpdateRole(ctx, userID, role)
		if err != nil {
			return nil, s.guard.fail(ctx, op, err)
		}
		return updated, nil
	}

	self := *caller
	self.Role = role
	if err := s.sessions.SaveUser(ctx, sid, &self); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	// Callers who never logged in through the roster have no entry to edit.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return &self, nil
		}
		return nil, s.guard.fail(ctx, op, err)
	}
	if _, err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return &self, nil
}

// ErrorLogs returns the error log newest first.
func (s *AdminService) ErrorLogs(ctx context.Context, caller *models.User) ([]models.ErrorLogEntry, error) {
	const op = "admin.error_logs"
	if err := s.authorize(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	entries, err := s.errorLogs.List(ctx)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	return entries, nil
}
