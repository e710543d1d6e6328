package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/dto"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
)

const authCodeBytes = 32

// AuthorizationService issues authorization codes for authenticated users.
type AuthorizationService struct {
	clientValidator *ClientValidationService
	codes           domain.AuthCodeRepository
	clock           domain.Clock
	logger          log.Logger
	codeTTLMinutes  int
}

// NewAuthorizationService creates the authorization-code generation use
// case. A non-positive ttlMinutes falls back to the one-minute default.
func NewAuthorizationService(
	clientValidator *ClientValidationService,
	codes domain.AuthCodeRepository,
	clock domain.Clock,
	logger log.Logger,
	ttlMinutes int,
) *AuthorizationService {
	if ttlMinutes <= 0 {
		ttlMinutes = domain.DefaultAuthCodeTTLMinutes
	}
	return &AuthorizationService{
		clientValidator: clientValidator,
		codes:           codes,
		clock:           clock,
		logger:          logger.Child(log.Fields{"service": "authorize"}),
		codeTTLMinutes:  ttlMinutes,
	}
}

// GenerateAuthCode validates the client, mints a random single-use code
// bound to the user, client and PKCE challenge, and persists it. Client
// validation failures propagate as typed OAuth errors; anything else is
// logged and wrapped as a server error.
func (s *AuthorizationService) GenerateAuthCode(ctx context.Context,
	userID string, req *dto.AuthorizeRequest,
) (*dto.AuthorizeResponse, error) {
	if _, err := s.clientValidator.Validate(ctx, req.ClientID, req.RedirectURI,
		domain.GrantTypeAuthorizationCode); err != nil {
		return nil, err
	}

	code, err := generateAuthorizationCode()
	if err != nil {
		s.logger.Error(ctx, "failed to generate authorization code", err)
		return nil, ssoerrors.NewServerError(err)
	}

	authCode := domain.NewAuthCode(code, userID, req.ClientID, req.RedirectURI,
		req.CodeChallenge, req.Scope, req.State, s.codeTTLMinutes, s.clock)

	if err := s.codes.Save(ctx, authCode); err != nil {
		s.logger.Error(ctx, "failed to persist authorization code", err, log.Fields{
			"client_id": req.ClientID.String(),
			"user_id":   userID,
		})
		return nil, ssoerrors.NewServerError(err)
	}

	s.logger.Debug(ctx, "authorization code issued", log.Fields{
		"client_id":  req.ClientID.String(),
		"user_id":    userID,
		"expires_at": authCode.ExpiresAt,
	})

	return &dto.AuthorizeResponse{Code: code, State: req.State}, nil
}

// generateAuthorizationCode returns 32 cryptographically random bytes,
// base64url-encoded so the code survives a redirect query string.
func generateAuthorizationCode() (string, error) {
	buf := make([]byte, authCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
