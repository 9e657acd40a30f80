// Package store adapts key-value backends (memory, Redis, SQL) behind
// whole-value get/set semantics. Tables are JSON arrays stored under one key;
// writes overwrite the full value and the last writer wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"draftdesk/internal/observability"
)

// Logical table names.
const (
	TablePosts      = "posts"
	TableRateLimits = "rate_limits"
	TableErrorLogs  = "error_logs"
	TableUsers      = "users"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// Store is a byte-oriented key-value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ReadTable returns the records stored under table. A missing key or a value
// that does not decode yields an empty slice; the latter is logged. Any
// other backend failure is returned so callers never rewrite a table from a
// read that did not happen.
func ReadTable[T any](ctx context.Context, s Store, table string) ([]T, error) {
	raw, err := s.Get(ctx, table)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", table, err)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		observability.Logger.WarnContext(ctx, "store value is not valid JSON, treating table as empty",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// WriteTable overwrites table with records.
func WriteTable[T any](ctx context.Context, s Store, table string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode table %s: %w", table, err)
	}
	if err := s.Set(ctx, table, raw); err != nil {
		return fmt.Errorf("write table %s: %w", table, err)
	}
	return nil
}

// ReadValue decodes the single value under key into out. It reports false
// when the key is absent or undecodable.
func ReadValue(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		observability.Logger.WarnContext(ctx, "store value is not valid JSON, ignoring",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	return true, nil
}

// WriteValue encodes v as JSON under key.
func WriteValue(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
