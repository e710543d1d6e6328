package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/dto"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
)

func activeUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		Email:    "alice@example.com",
		Username: "alice",
		Roles:    []string{"user"},
		IsActive: true,
	}
}

func TestLogin_MalformedRequestIsValidationError(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewAuthService(new(MockUserRepository), new(MockSessionRepository), clock, log.NewNop())

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		EmailOrUsername: "",
		Password:        "short",
	})

	require.Error(t, err)
	assert.True(t, ssoerrors.IsValidation(err),
		"malformed input must not be conflated with bad credentials")
}

func TestLogin_BadCredentials(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	users := new(MockUserRepository)
	users.On("ValidateCredentials", mock.Anything, "alice@example.com", "wrong-password").
		Return(nil, nil)

	svc := NewAuthService(users, new(MockSessionRepository), clock, log.NewNop())
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		EmailOrUsername: "alice@example.com",
		Password:        "wrong-password",
	})

	require.Error(t, err)
	assert.True(t, ssoerrors.IsUnauthorized(err))
	users.AssertExpectations(t)
}

func TestLogin_InactiveAccount(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	user := activeUser()
	user.IsActive = false

	users := new(MockUserRepository)
	users.On("ValidateCredentials", mock.Anything, "alice@example.com", "correct-password").
		Return(user, nil)

	svc := NewAuthService(users, new(MockSessionRepository), clock, log.NewNop())
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		EmailOrUsername: "alice@example.com",
		Password:        "correct-password",
	})

	require.Error(t, err)
	assert.True(t, ssoerrors.IsUnauthorized(err))
}

func TestLogin_SessionTTLFollowsRememberMe(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	users := new(MockUserRepository)
	users.On("ValidateCredentials", mock.Anything, "alice@example.com", "correct-password").
		Return(activeUser(), nil)

	for _, tc := range []struct {
		name       string
		rememberMe bool
		ttl        time.Duration
	}{
		{"default", false, domain.SessionTTL},
		{"remember_me", true, domain.RememberMeTTL},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sessions := new(MockSessionRepository)
			var saved *domain.Session
			sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).
				Run(func(args mock.Arguments) {
					saved = args.Get(1).(*domain.Session)
				}).
				Return(nil)

			svc := NewAuthService(users, sessions, clock, log.NewNop())
			resp, err := svc.Login(context.Background(), &dto.LoginRequest{
				EmailOrUsername: "alice@example.com",
				Password:        "correct-password",
				RememberMe:      tc.rememberMe,
			})

			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, clock.Now().Add(tc.ttl), saved.ExpiresAt)
			assert.Equal(t, saved.ID, resp.SessionID)
			assert.Equal(t, "alice@example.com", resp.User.Email)
			assert.Equal(t, "password", saved.Metadata["login_method"])
		})
	}
}

func TestValidateSession(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	live := domain.NewSession("sid-1", "user-1", false, clock)
	expired := domain.NewSession("sid-2", "user-1", false, clock)
	expired.ExpiresAt = clock.Now().Add(-time.Minute)

	sessions := new(MockSessionRepository)
	sessions.On("FindByID", mock.Anything, "sid-1").Return(live, nil)
	sessions.On("FindByID", mock.Anything, "sid-2").Return(expired, nil)
	sessions.On("FindByID", mock.Anything, "sid-3").Return(nil, nil)

	svc := NewAuthService(new(MockUserRepository), sessions, clock, log.NewNop())

	got, err := svc.ValidateSession(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, live, got)

	got, err = svc.ValidateSession(context.Background(), "sid-2")
	require.NoError(t, err)
	assert.Nil(t, got, "an expired session resolves to nil, not an error")

	got, err = svc.ValidateSession(context.Background(), "sid-3")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.ValidateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLogoutAndRevoke(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	sessions := new(MockSessionRepository)
	sessions.On("DeleteByID", mock.Anything, "sid-1").Return(nil)
	sessions.On("DeleteByUserID", mock.Anything, "user-1").Return(nil)

	svc := NewAuthService(new(MockUserRepository), sessions, clock, log.NewNop())
	assert.NoError(t, svc.Logout(context.Background(), "sid-1"))
	assert.NoError(t, svc.RevokeUserSessions(context.Background(), "user-1"))
	sessions.AssertExpectations(t)
}
