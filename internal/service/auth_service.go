package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "draftdesk-api"
	tokenAudience = "draftdesk-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// Session is what signup and login hand back to the client.
type Session struct {
	SessionID string       `json:"session_id"`
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
}

// AuthService implements mock authentication: any well-formed email and
// non-empty password starts a session.
type AuthService struct {
	sessions    repository.SessionRepository
	users       repository.UserRepository
	guard       *Guard
	secret      []byte
	adminEmails map[string]bool
	hashCost    int
	now         func() time.Time
}

func NewAuthService(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	guard *Guard,
	jwtSecret string,
	adminEmails []string,
) *AuthService {
	if guard == nil {
		guard = &Guard{}
	}
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &AuthService{
		sessions:    sessions,
		users:       users,
		guard:       guard,
		secret:      []byte(jwtSecret),
		adminEmails: admins,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (*Session, error) {
	return s.start(ctx, "auth.signup", email, password)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	return s.start(ctx, "auth.login", email, password)
}

func validateCredentials(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", models.NewValidationError("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", models.NewValidationError("Invalid email format")
	}
	if password == "" {
		return "", models.NewValidationError("Password is required")
	}
	return strings.ToLower(email), nil
}

func (s *AuthService) start(ctx context.Context, op, email, password string) (*Session, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, s.guard.fail(ctx, op, models.NewValidationError("Password too long (max 72 bytes)"))
	}
	if err != nil {
		return nil, s.guard.fail(ctx, op, fmt.Errorf("hash password: %w", err))
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.SplitN(email, "@", 2)[0],
		Role:      models.RoleUser,
		CreatedAt: now,
	}
	if s.adminEmails[email] {
		user.Role = models.RoleAdmin
	}

	sid := uuid.NewString()
	token, err := s.generateToken(user.ID, sid, now)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	if err := s.sessions.Save(ctx, sid, user, token); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if err := s.users.Upsert(ctx, models.RosterEntry{User: *user, PasswordHash: string(hash)}); err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}

	return &Session{SessionID: sid, Token: token, User: user}, nil
}

func (s *AuthService) generateToken(userID, sid string, now time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	claims := jwt.MapClaims{
		"sub": userID,
		"sid": sid,
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		return s.guard.fail(ctx, "auth.logout", err)
	}
	return nil
}

// CurrentUser returns the user of an active session.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*models.User, error) {
	const op = "auth.current_user"
	rec, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, s.guard.fail(ctx, op, err)
	}
	if !rec.Authenticated || rec.User == nil {
		return nil, s.guard.fail(ctx, op, models.NewNotAuthenticatedError())
	}
	return rec.User, nil
}

// Authenticate verifies a bearer token and returns its user and session id.
// The token must be the one currently stored for its session.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, string, error) {
	const op = "auth.authenticate"

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, "", s.guard.fail(ctx, op, &models.AppError{
			Code:    models.CodeNotAuthenticated,
			Message: "Invalid or expired token",
			Err:     err,
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", s.guard.fail(ctx, op, models.NewNotAuthenticatedError())
	}
	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	if sub == "" || sid == "" {
		return nil, "", s.guard.fail(ctx, op, models.NewNotAuthenticatedError())
	}

	rec, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return nil, "", s.guard.fail(ctx, op, err)
	}
	if !rec.Authenticated || rec.User == nil || rec.Token != tokenString || rec.User.ID != sub {
		return nil, "", s.guard.fail(ctx, op, models.NewNotAuthenticatedError())
	}
	return rec.User, sid, nil
}

// SaveAPIKey stores the caller's generation credential. An empty key clears it.
func (s *AuthService) SaveAPIKey(ctx context.Context, caller *models.User, sid, key string) error {
	const op = "auth.save_api_key"
	if err := s.guard.enter(ctx, caller); err != nil {
		return s.guard.fail(ctx, op, err)
	}
	if err := s.sessions.SetAPIKey(ctx, sid, strings.TrimSpace(key)); err != nil {
		return s.guard.fail(ctx, op, err)
	}
	return nil
}

// APIKey returns the session's saved generation credential, or "".
func (s *AuthService) APIKey(ctx context.Context, sid string) (string, error) {
	key, err := s.sessions.APIKey(ctx, sid)
	if err != nil {
		return "", s.guard.fail(ctx, "auth.api_key", err)
	}
	return key, nil
}
