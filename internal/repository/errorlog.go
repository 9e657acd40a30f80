package repository

import (
	"context"
	"sync"

	"draftdesk/internal/models"
	"draftdesk/internal/store"
)

// MaxErrorLogEntries caps the error log; older entries are evicted first.
const MaxErrorLogEntries = 100

// ErrorLogRepository keeps the capped operational error log.
type ErrorLogRepository interface {
	Append(ctx context.Context, entry models.ErrorLogEntry) error
	List(ctx context.Context) ([]models.ErrorLogEntry, error)
}

type errorLogRepository struct {
	store store.Store
	mu    sync.Mutex
}

// NewErrorLogRepository creates an error log repository over s.
func NewErrorLogRepository(s store.Store) ErrorLogRepository {
	return &errorLogRepository{store: s}
}

func (r *errorLogRepository) Append(ctx context.Context, entry models.ErrorLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := store.ReadTable[models.ErrorLogEntry](ctx, r.store, store.TableErrorLogs)
	if err != nil {
		return models.NewInternalError(err)
	}
	entries = append(entries, entry)
	if over := len(entries) - MaxErrorLogEntries; over > 0 {
		entries = entries[over:]
	}
	return store.WriteTable(ctx, r.store, store.TableErrorLogs, entries)
}

// List returns the entries newest first.
func (r *errorLogRepository) List(ctx context.Context) ([]models.ErrorLogEntry, error) {
	entries, err := store.ReadTable[models.ErrorLogEntry](ctx, r.store, store.TableErrorLogs)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
