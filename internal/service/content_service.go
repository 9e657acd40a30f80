package service

import (
	"context"
	"strings"
	"time"

	"draftdesk/internal/featureflags"
	"draftdesk/internal/generator"
	"draftdesk/internal/models"
	"draftdesk/internal/repository"

	"github.com/google/uuid"
)

// DefaultStyle is used when a generation request names no style.
const DefaultStyle = "professional"

// ContentService turns a topic and style into an unsaved draft.
type ContentService struct {
	gen        *generator.Generator
	sessions   repository.SessionRepository
	guard      *Guard
	defaultKey string
	now        func() time.Time
}

// GenerateResult is a draft plus the path that produced it.
type GenerateResult struct {
	Post   *models.Post     `json:"post"`
	Source generator.Source `json:"source"`
}

// NewContentService creates the service. defaultKey is used for callers who
// have not saved their own API key.
func NewContentService(gen *generator.Generator, sessions repository.SessionRepository, guard *Guard, defaultKey string) *ContentService {
	if guard == nil {
		guard = &Guard{}
	}
	return &ContentService{
		gen:        gen,
		sessions:   sessions,
		guard:      guard,
		defaultKey: defaultKey,
		now:        time.Now,
	}
}

// Generate produces a draft for caller. sid selects the session whose saved
// API key is preferred. Backend failures fall back to the local composer and
// are only recorded. The draft is not stored; its id is kept when the draft
// is passed to PostService.Create.
func (s *ContentService) Generate(ctx context.Context, caller *models.User, sid, topic, style string) (*GenerateResult, error) {
	const op = "content.generate"
	if err := s.guard.enter(ctx, caller); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, s.guard.fail(ctx, op, models.NewValidationError("Topic is required"))
	}
	style = strings.TrimSpace(style)
	if style == "" {
		style = DefaultStyle
	}

	apiKey := ""
	if s.guard.Flags.EnabledOr(featureflags.BackendGeneration, caller.ID, true) {
		apiKey = s.credential(ctx, sid)
	}

	res := s.gen.Generate(ctx, apiKey, topic, style)
	if res.BackendErr != nil {
		_ = s.guard.Tracker.Track(ctx, op+".backend", res.BackendErr)
	}

	now := s.now().UTC()
	return &GenerateResult{
		Post: &models.Post{
			ID:        uuid.NewString(),
			Title:     res.Title,
			Content:   res.Content,
			Topic:     topic,
			Style:     style,
			UserID:    caller.ID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Source: res.Source,
	}, nil
}

func (s *ContentService) credential(ctx context.Context, sid string) string {
	if s.sessions != nil && sid != "" {
		if key, err := s.sessions.APIKey(ctx, sid); err == nil && key != "" {
			return key
		}
	}
	return s.defaultKey
}
