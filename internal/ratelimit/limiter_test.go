package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/repository"
	"draftdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLimiter(t *testing.T, limit int) (*Limiter, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := New(repository.NewRateLimitRepository(store.NewMemory()), "test", limit, time.Hour)
	l.Now = c.now
	return l, c
}

func TestLimiter_CheckCreatesWindow(t *testing.T) {
	ctx := context.Background()
	l, c := newLimiter(t, 10)

	s, err := l.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Limit)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 10, s.Remaining)
	assert.Equal(t, c.t.Add(time.Hour), s.ResetTime)

	again, err := l.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestLimiter_ConsumeRemainingInvariant(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 3)

	for i := 1; i <= 6; i++ {
		s, err := l.Consume(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, i, s.Current)
		want := 3 - i
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, s.Remaining)
	}
}

func TestLimiter_ConsumeAfterReset(t *testing.T) {
	ctx := context.Background()
	l, c := newLimiter(t, 10)

	for i := 0; i < 7; i++ {
		_, err := l.Consume(ctx, "u1")
		require.NoError(t, err)
	}

	c.advance(time.Hour)
	s, err := l.Consume(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, s.Current, "window boundary itself is not expired")

	c.advance(time.Nanosecond)
	s, err = l.Consume(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 9, s.Remaining)
	assert.Equal(t, c.t.Add(time.Hour), s.ResetTime)
}

func TestLimiter_CheckAfterResetDoesNotCharge(t *testing.T) {
	ctx := context.Background()
	l, c := newLimiter(t, 10)

	_, err := l.Consume(ctx, "u1")
	require.NoError(t, err)
	c.advance(2 * time.Hour)

	s, err := l.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 10, s.Remaining)
	assert.Equal(t, c.t.Add(time.Hour), s.ResetTime)
}

func TestLimiter_AcquireTenthOkEleventhRejected(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 10)

	var s models.RateLimitState
	var err error
	for i := 0; i < 10; i++ {
		s, err = l.Acquire(ctx, "u1")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, s.Remaining)

	s, err = l.Acquire(ctx, "u1")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeRateLimitExceeded))
	assert.Equal(t, 10, s.Current, "rejected call is not charged")

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, s.ResetTime, appErr.ResetAt)
	assert.Contains(t, appErr.Message, "try again after")
}

func TestLimiter_AcquireRecoversAfterWindow(t *testing.T) {
	ctx := context.Background()
	l, c := newLimiter(t, 2)

	for i := 0; i < 2; i++ {
		_, err := l.Acquire(ctx, "u1")
		require.NoError(t, err)
	}
	_, err := l.Acquire(ctx, "u1")
	require.Error(t, err)

	c.advance(time.Hour + time.Second)
	s, err := l.Acquire(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Current)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, 1)

	_, err := l.Acquire(ctx, "u1")
	require.NoError(t, err)
	_, err = l.Acquire(ctx, "u2")
	assert.NoError(t, err)
	_, err = l.Acquire(ctx, "u1")
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	l := New(repository.NewRateLimitRepository(store.NewMemory()), "test", 0, 0)
	assert.Equal(t, DefaultLimit, l.Limit)
	assert.Equal(t, DefaultWindow, l.Window)
}

// slowStore widens the read-modify-write window of every table write.
type slowStore struct {
	store.Store
}

func (s slowStore) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(200 * time.Microsecond)
	return s.Store.Set(ctx, key, value)
}

func TestLimiter_SharedRepositoryKeepsEveryCharge(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRateLimitRepository(slowStore{Store: store.NewMemory()})
	user := New(repo, "user", 1000, time.Hour)
	ip := New(repo, "auth", 1000, time.Hour)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := user.Acquire(ctx, "u1")
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			_, err := ip.Acquire(ctx, fmt.Sprintf("ip:login:%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, err := user.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, n, s.Current)

	for i := 0; i < n; i++ {
		s, err := ip.Check(ctx, fmt.Sprintf("ip:login:%d", i))
		require.NoError(t, err)
		assert.Equal(t, 1, s.Current)
	}
}

func TestLimiter_StoreFailureIsInternal(t *testing.T) {
	l := New(repository.NewRateLimitRepository(brokenStore{Store: store.NewMemory()}), "test", 5, time.Hour)
	_, err := l.Acquire(context.Background(), "u1")
	assert.True(t, models.IsCode(err, models.CodeInternal))
}

type brokenStore struct {
	store.Store
}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("redis: connection refused")
}
