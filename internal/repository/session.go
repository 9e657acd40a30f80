package repository

import (
	"context"
	"fmt"

	"draftdesk/internal/models"
	"draftdesk/internal/store"
)

// SessionRecord is what a session scope holds once a user logged in.
type SessionRecord struct {
	Authenticated bool
	User          *models.User
	Token         string
}

// SessionRepository stores session-scoped keys.
type SessionRepository interface {
	Save(ctx context.Context, sid string, user *models.User, token string) error
	Load(ctx context.Context, sid string) (*SessionRecord, error)
	SaveUser(ctx context.Context, sid string, user *models.User) error
	Clear(ctx context.Context, sid string) error
	SetAPIKey(ctx context.Context, sid, key string) error
	APIKey(ctx context.Context, sid string) (string, error)
}

type sessionRepository struct {
	store store.Store
}

// NewSessionRepository creates a session repository over s.
func NewSessionRepository(s store.Store) SessionRepository {
	return &sessionRepository{store: s}
}

const (
	keyAuthenticated = "isAuthenticated"
	keyUser          = "user"
	keyToken         = "token"
	keyAPIKey        = "apiKey"
)

// SessionKey returns the store key for name inside session sid.
func SessionKey(sid, name string) string {
	return fmt.Sprintf("session:%s:%s", sid, name)
}

func (r *sessionRepository) Save(ctx context.Context, sid string, user *models.User, token string) error {
	if err := store.WriteValue(ctx, r.store, SessionKey(sid, keyAuthenticated), true); err != nil {
		return err
	}
	if err := r.SaveUser(ctx, sid, user); err != nil {
		return err
	}
	return store.WriteValue(ctx, r.store, SessionKey(sid, keyToken), token)
}

// Load returns the session record. A session that was never created or was
// cleared comes back with Authenticated false.
func (r *sessionRepository) Load(ctx context.Context, sid string) (*SessionRecord, error) {
	rec := &SessionRecord{}

	if _, err := store.ReadValue(ctx, r.store, SessionKey(sid, keyAuthenticated), &rec.Authenticated); err != nil {
		return nil, err
	}
	if !rec.Authenticated {
		return rec, nil
	}

	var user models.User
	ok, err := store.ReadValue(ctx, r.store, SessionKey(sid, keyUser), &user)
	if err != nil {
		return nil, err
	}
	if ok {
		rec.User = &user
	}
	if _, err := store.ReadValue(ctx, r.store, SessionKey(sid, keyToken), &rec.Token); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sessionRepository) SaveUser(ctx context.Context, sid string, user *models.User) error {
	return store.WriteValue(ctx, r.store, SessionKey(sid, keyUser), user)
}

func (r *sessionRepository) Clear(ctx context.Context, sid string) error {
	for _, name := range []string{keyAuthenticated, keyUser, keyToken, keyAPIKey} {
		if err := r.store.Delete(ctx, SessionKey(sid, name)); err != nil {
			return fmt.Errorf("clear session %s: %w", name, err)
		}
	}
	return nil
}

// SetAPIKey stores the generation credential for the session. An empty key
// removes it.
func (r *sessionRepository) SetAPIKey(ctx context.Context, sid, key string) error {
	if key == "" {
		return r.store.Delete(ctx, SessionKey(sid, keyAPIKey))
	}
	return store.WriteValue(ctx, r.store, SessionKey(sid, keyAPIKey), key)
}

func (r *sessionRepository) APIKey(ctx context.Context, sid string) (string, error) {
	var key string
	if _, err := store.ReadValue(ctx, r.store, SessionKey(sid, keyAPIKey), &key); err != nil {
		return "", err
	}
	return key, nil
}
