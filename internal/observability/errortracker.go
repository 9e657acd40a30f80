package observability

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"draftdesk/internal/models"
)

// ErrorSink persists error log entries.
type ErrorSink interface {
	Append(ctx context.Context, entry models.ErrorLogEntry) error
}

// ErrorTracker is the single wrapper every service failure passes through.
type ErrorTracker struct {
	sink ErrorSink
	now  func() time.Time
}

// NewErrorTracker creates a tracker writing to sink. A nil sink only logs.
func NewErrorTracker(sink ErrorSink) *ErrorTracker {
	return &ErrorTracker{sink: sink, now: time.Now}
}

// Track records err under operation and returns it unchanged.
func (t *ErrorTracker) Track(ctx context.Context, operation string, err error) error {
	if err == nil || t == nil {
		return err
	}

	code := models.ErrorCode(err)
	entry := models.ErrorLogEntry{
		Timestamp: t.now().UTC(),
		Message:   err.Error(),
		Operation: operation,
		Code:      code,
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok {
		entry.UserID = uid
	}
	if code == "" || code == models.CodeInternal {
		entry.Stack = string(debug.Stack())
	}

	ErrorsLogged.WithLabelValues(codeLabel(code)).Inc()
	Logger.WarnContext(ctx, "operation failed",
		slog.String("operation", operation),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)

	if t.sink != nil {
		if sinkErr := t.sink.Append(ctx, entry); sinkErr != nil {
			Logger.ErrorContext(ctx, "failed to append error log entry",
				slog.String("operation", operation),
				slog.String("error", sinkErr.Error()),
			)
		}
	}
	return err
}

func codeLabel(code string) string {
	if code == "" {
		return "UNCLASSIFIED"
	}
	return code
}
