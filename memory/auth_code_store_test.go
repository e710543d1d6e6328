package memory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// fakeClock pins time so expiry can be driven from the test.
type fakeClock struct {
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Timestamp() int64        { return c.now.Unix() }
func (c *fakeClock) ISOString() string       { return c.now.Format(time.RFC3339) }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestAuthCode(t *testing.T, code string, clock domain.Clock) *domain.AuthCode {
	t.Helper()
	challenge, err := domain.NewCodeChallenge(strings.Repeat("c", 43), "plain")
	require.NoError(t, err)
	clientID, err := domain.NewClientID("valid-client-id-123")
	require.NoError(t, err)
	return domain.NewAuthCode(code, "user-1", clientID,
		"https://example.com/callback", challenge, "openid", "xyz", 1, clock)
}

func TestAuthCodeStore_SaveAndFind(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewAuthCodeStore(clock)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestAuthCode(t, "code-1", clock)))

	found, err := store.FindByCode(ctx, "code-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "user-1", found.UserID)

	// The returned value is a copy; mutating it must not touch store state.
	found.MarkAsUsed()
	again, err := store.FindByCode(ctx, "code-1")
	require.NoError(t, err)
	assert.False(t, again.Used)

	missing, err := store.FindByCode(ctx, "no-such-code")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAuthCodeStore_ConsumeIsSingleUse(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewAuthCodeStore(clock)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestAuthCode(t, "code-1", clock)))

	consumed, err := store.ConsumeByCode(ctx, "code-1")
	require.NoError(t, err)
	assert.True(t, consumed.Used)

	_, err = store.ConsumeByCode(ctx, "code-1")
	assert.ErrorIs(t, err, ErrCodeNotConsumable)
}

func TestAuthCodeStore_ConsumeExpiredOrAbsent(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewAuthCodeStore(clock)
	ctx := context.Background()

	_, err := store.ConsumeByCode(ctx, "no-such-code")
	assert.ErrorIs(t, err, ErrCodeNotConsumable)

	require.NoError(t, store.Save(ctx, newTestAuthCode(t, "code-1", clock)))
	clock.Advance(2 * time.Minute)

	_, err = store.ConsumeByCode(ctx, "code-1")
	assert.ErrorIs(t, err, ErrCodeNotConsumable)
}

func TestAuthCodeStore_ConcurrentConsumeHasOneWinner(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewAuthCodeStore(clock)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestAuthCode(t, "code-1", clock)))

	const attempts = 32
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ConsumeByCode(ctx, "code-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrCodeNotConsumable)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestAuthCodeStore_CleanupDropsExpired(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewAuthCodeStore(clock)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestAuthCode(t, "old-code", clock)))
	clock.Advance(2 * time.Minute)
	require.NoError(t, store.Save(ctx, newTestAuthCode(t, "fresh-code", clock)))

	require.NoError(t, store.Cleanup(ctx))
	assert.Equal(t, 1, store.Len())

	fresh, err := store.FindByCode(ctx, "fresh-code")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}
