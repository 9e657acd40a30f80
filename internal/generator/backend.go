// Package generator produces blog post drafts from an LLM backend, falling
// back to a local template composer.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"draftdesk/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

// SystemInstruction is sent as the system message of every completion.
const SystemInstruction = "You are a skilled blog writer. Write a well-structured blog post in the requested style. " +
	"Format the post in Markdown and make the first line the title, starting with '# '."

// CompletionRequest is one draft request sent to a Backend.
type CompletionRequest struct {
	APIKey string
	Topic  string
	Style  string
}

// Backend produces raw markdown for a request.
type Backend interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// HTTPBackend talks to an OpenAI-compatible chat completions endpoint.
type HTTPBackend struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// NewHTTPBackend creates a backend for baseURL (for example
// https://api.openai.com/v1).
func NewHTTPBackend(baseURL, model string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPBackend{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Model:       model,
		Timeout:     timeout,
		Temperature: 0.7,
		MaxTokens:   1500,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// UserPrompt is the user message sent for topic and style.
func UserPrompt(topic, style string) string {
	return fmt.Sprintf("Write a blog post about %q in a %s style.", topic, style)
}

// Complete sends the request. The returned error is the raw failure; callers
// decide how to classify it.
func (b *HTTPBackend) Complete(ctx context.Context, req CompletionRequest) (text string, err error) {
	ctx, span := observability.StartClientSpan(ctx, "generator.complete",
		attribute.String("generator.model", b.Model),
		attribute.String("generator.style", req.Style),
	)
	defer func() { observability.EndSpan(span, err) }()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	start := time.Now()
	defer func() { observability.BackendLatency.Observe(time.Since(start).Seconds()) }()

	timeout := b.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(b.BaseURL + "/chat/completions")
	agent.Set(fiber.HeaderAuthorization, "Bearer "+req.APIKey)
	agent.JSON(chatRequest{
		Model: b.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: UserPrompt(req.Topic, req.Style)},
		},
		Temperature: b.Temperature,
		MaxTokens:   b.MaxTokens,
	})
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return "", fmt.Errorf("prepare request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	var resp chatResponse
	decodeErr := json.Unmarshal(body, &resp)

	if code < 200 || code >= 300 {
		if decodeErr == nil && resp.Error != nil && resp.Error.Message != "" {
			return "", fmt.Errorf("backend returned status %d: %s", code, resp.Error.Message)
		}
		return "", fmt.Errorf("backend returned status %d", code)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("backend returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
