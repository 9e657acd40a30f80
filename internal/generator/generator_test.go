package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"draftdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompletion(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantTitle   string
		wantContent string
	}{
		{"heading line", "# My Post\n\nBody text", "My Post", "Body text"},
		{"deeper heading", "### Deep  \nBody", "Deep", "Body"},
		{"leading whitespace", "\n\n  # Spaced\nBody\n", "Spaced", "Body"},
		{"no heading", "Just text\nmore", "Go in casual Style", "Just text\nmore"},
		{"empty heading", "#\nBody", "Go in casual Style", "#\nBody"},
		{"heading only", "# Only", "Only", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, content := ParseCompletion(tt.text, "Go", "casual")
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestFallback_TechnicalAI(t *testing.T) {
	title, content := Fallback{}.Compose("AI", "technical")

	assert.Equal(t, "AI in technical Style", title)
	assert.Contains(t, content, "```")
	assert.Contains(t, content, "## Technical Deep Dive")
	assert.Contains(t, content, "## Key Innovations")
	assert.Contains(t, content, "## Introduction")
	assert.Contains(t, content, "## Conclusion")
	assert.False(t, strings.HasPrefix(content, "#"+" "+title), "title line is not repeated in content")
}

func TestFallback_TopicTemplates(t *testing.T) {
	tests := []struct {
		topic   string
		heading string
	}{
		{"Home Fitness", "## Building a Routine"},
		{"Small business marketing", "## Strategies That Work"},
		{"Gardening", "## Practical Applications"},
		{"Emailing maintainers", "## Understanding the Basics"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			_, content := Fallback{}.Compose(tt.topic, "professional")
			assert.Contains(t, content, tt.heading)
			assert.Contains(t, content, "## Key Takeaways")
			assert.Contains(t, content, tt.topic)
		})
	}
}

func TestFallback_StyleSections(t *testing.T) {
	_, casual := Fallback{}.Compose("Cooking", "casual")
	assert.Contains(t, casual, "## A Quick Personal Note")
	assert.NotContains(t, casual, "```")

	_, persuasive := Fallback{}.Compose("Cooking", "Persuasive")
	assert.Contains(t, persuasive, "## Why You Should Act Now")
}

func TestFallback_Deterministic(t *testing.T) {
	t1, c1 := Fallback{}.Compose("Tech trends", "technical")
	t2, c2 := Fallback{}.Compose("Tech trends", "technical")
	assert.Equal(t, t1, t2)
	assert.Equal(t, c1, c2)
}

type stubBackend struct {
	text  string
	err   error
	calls int
}

func (s *stubBackend) Complete(_ context.Context, _ CompletionRequest) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("no backend configured", func(t *testing.T) {
		res := New(nil).Generate(ctx, "sk-key", "AI", "technical")
		assert.Equal(t, SourceFallback, res.Source)
		assert.NoError(t, res.BackendErr)
		assert.Equal(t, "AI in technical Style", res.Title)
		assert.Contains(t, res.Content, "```")
	})

	t.Run("no credential skips backend", func(t *testing.T) {
		b := &stubBackend{text: "# X\nY"}
		res := New(b).Generate(ctx, "  ", "AI", "technical")
		assert.Equal(t, SourceFallback, res.Source)
		assert.Equal(t, 0, b.calls)
	})

	t.Run("backend success", func(t *testing.T) {
		b := &stubBackend{text: "# Robots Rising\n\nThey are here."}
		res := New(b).Generate(ctx, "sk-key", "AI", "technical")
		assert.Equal(t, SourceBackend, res.Source)
		assert.Equal(t, "Robots Rising", res.Title)
		assert.Equal(t, "They are here.", res.Content)
		assert.NoError(t, res.BackendErr)
	})

	t.Run("backend failure falls back", func(t *testing.T) {
		b := &stubBackend{err: errors.New("boom")}
		res := New(b).Generate(ctx, "sk-key", "AI", "technical")
		assert.Equal(t, SourceFallback, res.Source)
		assert.Equal(t, "AI in technical Style", res.Title)
		require.Error(t, res.BackendErr)
		assert.True(t, models.IsCode(res.BackendErr, models.CodeGenerationBackend))
	})
}

func TestHTTPBackend_Complete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"# Title\nBody"}}]}`))
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL+"/v1/", "test-model", 5*time.Second)
	text, err := b.Complete(context.Background(), CompletionRequest{APIKey: "sk-test", Topic: "AI", Style: "casual"})
	require.NoError(t, err)
	assert.Equal(t, "# Title\nBody", text)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, SystemInstruction, gotReq.Messages[0].Content)
	assert.Contains(t, gotReq.Messages[1].Content, `"AI"`)
}

func TestHTTPBackend_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error with message", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, "bad key"},
		{"server error plain", http.StatusBadGateway, `oops`, "status 502"},
		{"empty choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"invalid json", http.StatusOK, `{`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPBackend(srv.URL, "m", time.Second).Complete(context.Background(), CompletionRequest{APIKey: "k"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPBackend(url, "m", time.Second).Complete(context.Background(), CompletionRequest{APIKey: "k"})
	assert.Error(t, err)
}
