package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/dto"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
	"github.com/gatehouse-sso/gatehouse/memory"
)

func authorizeRequest(t *testing.T, challenge string) *dto.AuthorizeRequest {
	t.Helper()
	req, err := dto.AuthorizeRequestFromQuery(url.Values{
		"client_id":             {"valid-client-id-123"},
		"redirect_uri":          {"https://example.com/callback"},
		"response_type":         {"code"},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
		"state":                 {"xyz"},
		"scope":                 {"openid profile"},
	})
	require.NoError(t, err)
	return req
}

func TestGenerateAuthCode_IssuesSingleUseCode(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	clients := new(MockClientRepository)
	clients.On("FindByClientID", mock.Anything, "valid-client-id-123").Return(&domain.OAuthClient{
		ClientID:     "valid-client-id-123",
		RedirectURIs: []string{"https://example.com/callback"},
		GrantTypes:   []string{domain.GrantTypeAuthorizationCode},
	}, nil)

	codes := memory.NewAuthCodeStore(clock)
	svc := NewAuthorizationService(
		NewClientValidationService(clients, log.NewNop()),
		codes, clock, log.NewNop(), 1)

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	resp, err := svc.GenerateAuthCode(context.Background(), "user-1",
		authorizeRequest(t, ComputeS256Challenge(verifier)))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Code)
	assert.Equal(t, "xyz", resp.State)

	stored, err := codes.FindByCode(context.Background(), resp.Code)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, "valid-client-id-123", stored.ClientID.String())
	assert.False(t, stored.Used)
	assert.Equal(t, clock.Now().Add(time.Minute), stored.ExpiresAt)
}

func TestGenerateAuthCode_CodesAreUnique(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	clients := new(MockClientRepository)
	clients.On("FindByClientID", mock.Anything, "valid-client-id-123").Return(&domain.OAuthClient{
		ClientID:     "valid-client-id-123",
		RedirectURIs: []string{"https://example.com/callback"},
		GrantTypes:   []string{domain.GrantTypeAuthorizationCode},
	}, nil)

	codes := memory.NewAuthCodeStore(clock)
	svc := NewAuthorizationService(
		NewClientValidationService(clients, log.NewNop()),
		codes, clock, log.NewNop(), 1)

	req := authorizeRequest(t, ComputeS256Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		resp, err := svc.GenerateAuthCode(context.Background(), "user-1", req)
		require.NoError(t, err)
		assert.False(t, seen[resp.Code], "codes must not repeat")
		seen[resp.Code] = true
	}
}

func TestGenerateAuthCode_RejectsUnknownClient(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	clients := new(MockClientRepository)
	clients.On("FindByClientID", mock.Anything, "valid-client-id-123").Return(nil, nil)

	codes := memory.NewAuthCodeStore(clock)
	svc := NewAuthorizationService(
		NewClientValidationService(clients, log.NewNop()),
		codes, clock, log.NewNop(), 1)

	_, err := svc.GenerateAuthCode(context.Background(), "user-1",
		authorizeRequest(t, ComputeS256Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")))

	require.Error(t, err)
	assert.True(t, ssoerrors.IsUnauthorized(err))
	assert.Equal(t, 0, codes.Len(), "no code may be persisted for a rejected client")
}
