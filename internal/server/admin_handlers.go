package server

import (
	"draftdesk/internal/middleware"
	"draftdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RoleRequest is the body of PUT /api/admin/users/:id/role.
type RoleRequest struct {
	Role string `json:"role"`
}

// GetStats handles GET /api/admin/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.adminService.GetStats(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(stats)
}

// GetAllPosts handles GET /api/admin/posts
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListAll(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetUsers handles GET /api/admin/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.adminService.ListUsers(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}

// UpdateUserRole handles PUT /api/admin/users/:id/role
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req RoleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.adminService.UpdateUserRole(c.UserContext(), middleware.CurrentUser(c), middleware.SessionID(c), id, req.Role)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// GetErrorLogs handles GET /api/admin/error-logs
func (s *Server) GetErrorLogs(c *fiber.Ctx) error {
	entries, err := s.adminService.ErrorLogs(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(entries)
}
