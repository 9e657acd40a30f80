package server

import (
	"draftdesk/internal/middleware"
	"draftdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CredentialsRequest is the body of signup and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIKeyRequest is the body of PUT /api/auth/api-key.
type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	sess, err := s.authService.Signup(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	sess, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(sess)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), middleware.SessionID(c)); err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me with the caller's rate limit window.
func (s *Server) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid := middleware.SessionID(c)

	user, err := s.authService.CurrentUser(ctx, sid)
	if err != nil {
		return models.Respond(c, err)
	}
	state, err := s.limiter.Check(ctx, user.ID)
	if err != nil {
		return models.Respond(c, err)
	}
	key, err := s.authService.APIKey(ctx, sid)
	if err != nil {
		return models.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"rate_limit":    state,
		"has_api_key":   key != "",
		"feature_flags": s.featureFlags.Snapshot(user.ID),
	})
}

// SaveAPIKey handles PUT /api/auth/api-key. An empty key clears it.
func (s *Server) SaveAPIKey(c *fiber.Ctx) error {
	var req APIKeyRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	err := s.authService.SaveAPIKey(c.UserContext(), middleware.CurrentUser(c), middleware.SessionID(c), req.APIKey)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"has_api_key": req.APIKey != ""})
}
