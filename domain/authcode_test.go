package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChallenge(t *testing.T) CodeChallenge {
	t.Helper()
	ch, err := NewCodeChallenge(strings.Repeat("c", 43), "S256")
	require.NoError(t, err)
	return ch
}

func testClientID(t *testing.T) ClientID {
	t.Helper()
	id, err := NewClientID("valid-client-id-123")
	require.NoError(t, err)
	return id
}

func TestNewAuthCode_ValidImmediatelyAfterCreation(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	code := NewAuthCode("opaque-code", "user-1", testClientID(t),
		"https://example.com/callback", testChallenge(t), "openid", "xyz",
		DefaultAuthCodeTTLMinutes, clock)

	assert.True(t, code.IsValid(clock))
	assert.False(t, code.Used)
	assert.Equal(t, clock.Now().Add(time.Minute), code.ExpiresAt)
	assert.Equal(t, "xyz", code.State)
}

func TestAuthCode_NegativeTTLIsExpiredImmediately(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	code := NewAuthCode("opaque-code", "user-1", testClientID(t),
		"https://example.com/callback", testChallenge(t), "", "", -1, clock)

	assert.True(t, code.IsExpired(clock))
	assert.False(t, code.IsValid(clock))
}

func TestAuthCode_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	code := NewAuthCode("opaque-code", "user-1", testClientID(t),
		"https://example.com/callback", testChallenge(t), "", "", 1, clock)

	clock.Advance(59 * time.Second)
	assert.True(t, code.IsValid(clock))

	clock.Advance(2 * time.Second)
	assert.False(t, code.IsValid(clock))
}

func TestAuthCode_MarkAsUsedInvalidates(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	code := NewAuthCode("opaque-code", "user-1", testClientID(t),
		"https://example.com/callback", testChallenge(t), "", "", 1, clock)

	code.MarkAsUsed()
	assert.True(t, code.Used)
	assert.False(t, code.IsValid(clock), "a used code is invalid even before expiry")
}
