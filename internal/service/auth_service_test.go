package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-long-enough-123456"

func (f *fixture) authService(adminEmails ...string) *AuthService {
	svc := NewAuthService(f.sessions, f.users, f.guard, testSecret, adminEmails)
	svc.hashCost = bcrypt.MinCost
	svc.now = f.clock.now
	return svc
}

func TestAuthService_SignupAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	sess, err := svc.Signup(ctx, "Writer@Example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.SessionID)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "writer@example.com", sess.User.Email)
	assert.Equal(t, models.RoleUser, sess.User.Role)

	user, sid, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, sid)
	assert.Equal(t, sess.User.ID, user.ID)

	current, err := svc.CurrentUser(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	raw, err := f.store.Get(ctx, "session:"+sid+":isAuthenticated")
	require.NoError(t, err)
	assert.Equal(t, "true", string(raw))
}

func TestAuthService_TokenClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	sess, err := svc.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(sess.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims["sub"])
	assert.Equal(t, sess.SessionID, claims["sid"])
	assert.NotEmpty(t, claims["jti"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, f.clock.t.Add(7*24*time.Hour).Unix(), exp.Unix())
}

func TestAuthService_EveryLoginMintsNewIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	first, err := svc.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "a@example.com", "other")
	require.NoError(t, err)

	assert.NotEqual(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, second.User.ID, users[0].ID)
}

func TestAuthService_RosterStoresHashOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	_, err := svc.Signup(ctx, "a@example.com", "plain-password")
	require.NoError(t, err)

	raw, err := f.store.Get(ctx, store.TableUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plain-password")
	assert.Contains(t, string(raw), "password_hash")
}

func TestAuthService_AdminEmails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService(" Root@Example.com ")

	sess, err := svc.Login(ctx, "root@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)
}

func TestAuthService_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "pw"},
		{"malformed email", "not-an-email", "pw"},
		{"display name form", "Bob <bob@example.com>", "pw"},
		{"empty password", "a@example.com", ""},
		{"password too long", "a@example.com", strings.Repeat("x", 73)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFixture(t, 10).authService()
			_, err := svc.Signup(ctx, tt.email, tt.password)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestAuthService_LogoutClearsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	sess, err := svc.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.SaveAPIKey(ctx, sess.User, sess.SessionID, "sk-1"))

	require.NoError(t, svc.Logout(ctx, sess.SessionID))

	_, err = svc.CurrentUser(ctx, sess.SessionID)
	assertCode(t, err, models.CodeNotAuthenticated)
	_, _, err = svc.Authenticate(ctx, sess.Token)
	assertCode(t, err, models.CodeNotAuthenticated)

	key, err := svc.APIKey(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestAuthService_AuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	sess, err := svc.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	other := NewAuthService(f.sessions, f.users, f.guard, "a-completely-different-secret-value", nil)
	other.hashCost = bcrypt.MinCost
	foreign, err := other.Login(ctx, "b@example.com", "pw")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"tampered", sess.Token + "x"},
		{"wrong secret", foreign.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(ctx, tt.token)
			assertCode(t, err, models.CodeNotAuthenticated)
		})
	}

	t.Run("expired", func(t *testing.T) {
		f.clock.advance(8 * 24 * time.Hour)
		defer f.clock.advance(-8 * 24 * time.Hour)
		_, _, err := svc.Authenticate(ctx, sess.Token)
		assertCode(t, err, models.CodeNotAuthenticated)
	})

	t.Run("superseded token", func(t *testing.T) {
		require.NoError(t, f.sessions.Save(ctx, sess.SessionID, sess.User, "replacement"))
		_, _, err := svc.Authenticate(ctx, sess.Token)
		assertCode(t, err, models.CodeNotAuthenticated)
	})
}

func TestAuthService_APIKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	svc := f.authService()

	err := svc.SaveAPIKey(ctx, nil, "sid", "k")
	assertCode(t, err, models.CodeNotAuthenticated)

	require.NoError(t, svc.SaveAPIKey(ctx, alice, "sid", "  sk-abc  "))
	key, err := svc.APIKey(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", key)

	require.NoError(t, svc.SaveAPIKey(ctx, alice, "sid", ""))
	key, err = svc.APIKey(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, key)
}
