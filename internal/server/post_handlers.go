package server

import (
	"time"

	"draftdesk/internal/middleware"
	"draftdesk/internal/models"
	"draftdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GenerateRequest is the body of POST /api/posts/generate.
type GenerateRequest struct {
	Topic string `json:"topic"`
	Style string `json:"style"`
}

// PublishRequest is the body of POST /api/posts/:id/publish. An empty body
// publishes.
type PublishRequest struct {
	Published *bool `json:"published"`
}

// ScheduleRequest is the body of POST /api/posts/:id/schedule. A null date
// clears the schedule.
type ScheduleRequest struct {
	PublishDate *time.Time `json:"publish_date"`
}

// GeneratePost handles POST /api/posts/generate
func (s *Server) GeneratePost(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.contentService.Generate(c.UserContext(), middleware.CurrentUser(c), middleware.SessionID(c), req.Topic, req.Style)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(res)
}

// CreatePost handles POST /api/posts. The body may carry the id of a draft
// from /api/posts/generate; that id becomes the stored post's id.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.SavePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	post, err := s.postService.Create(c.UserContext(), middleware.CurrentUser(c), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.SavePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.ID = id
	post, err := s.postService.Save(c.UserContext(), middleware.CurrentUser(c), in)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// GetMyPosts handles GET /api/posts/mine
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListByUser(c.UserContext(), middleware.CurrentUser(c), "")
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id for owners, admins and the public.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetByID(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// GetPublicPost handles GET /post/:id, the shareable link. Only visible
// posts are served.
func (s *Server) GetPublicPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetByID(c.UserContext(), nil, id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// PublishPost handles POST /api/posts/:id/publish
func (s *Server) PublishPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req PublishRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	published := req.Published == nil || *req.Published

	post, err := s.postService.SetPublished(c.UserContext(), middleware.CurrentUser(c), id, published)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// SchedulePost handles POST /api/posts/:id/schedule
func (s *Server) SchedulePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ScheduleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.Schedule(c.UserContext(), middleware.CurrentUser(c), id, req.PublishDate)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
