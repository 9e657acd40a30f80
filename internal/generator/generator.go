package generator

import (
	"context"
	"strings"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
)

// Source identifies which path produced a draft.
type Source string

const (
	SourceBackend  Source = "backend"
	SourceFallback Source = "fallback"
)

// Result is a generated draft and how it was produced.
type Result struct {
	Title   string
	Content string
	Source  Source
	// BackendErr is set when the backend was tried and failed.
	BackendErr error
}

// Generator tries the backend when a credential is available and falls
// back to the local composer otherwise.
type Generator struct {
	backend  Backend
	fallback Fallback
}

// New creates a generator. A nil backend always uses the fallback.
func New(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// Generate never fails: backend errors are reported in Result.BackendErr.
func (g *Generator) Generate(ctx context.Context, apiKey, topic, style string) Result {
	if g.backend != nil && strings.TrimSpace(apiKey) != "" {
		text, err := g.backend.Complete(ctx, CompletionRequest{APIKey: apiKey, Topic: topic, Style: style})
		if err == nil {
			title, content := ParseCompletion(text, topic, style)
			observability.Generations.WithLabelValues(string(SourceBackend)).Inc()
			return Result{Title: title, Content: content, Source: SourceBackend}
		}

		title, content := g.fallback.Compose(topic, style)
		observability.Generations.WithLabelValues(string(SourceFallback)).Inc()
		return Result{
			Title:      title,
			Content:    content,
			Source:     SourceFallback,
			BackendErr: models.NewGenerationBackendError(err),
		}
	}

	title, content := g.fallback.Compose(topic, style)
	observability.Generations.WithLabelValues(string(SourceFallback)).Inc()
	return Result{Title: title, Content: content, Source: SourceFallback}
}
