package services

import (
	"context"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/dto"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
)

// TokenExchangeService redeems authorization codes for signed access
// tokens. This is the protocol's critical path.
type TokenExchangeService struct {
	codes  domain.AuthCodeRepository
	users  domain.UserRepository
	pkce   *PKCEService
	jwt    *JWTService
	clock  domain.Clock
	logger log.Logger
}

// NewTokenExchangeService creates the token exchange use case.
func NewTokenExchangeService(
	codes domain.AuthCodeRepository,
	users domain.UserRepository,
	pkce *PKCEService,
	jwtService *JWTService,
	clock domain.Clock,
	logger log.Logger,
) *TokenExchangeService {
	return &TokenExchangeService{
		codes:  codes,
		users:  users,
		pkce:   pkce,
		jwt:    jwtService,
		clock:  clock,
		logger: logger.Child(log.Fields{"service": "token_exchange"}),
	}
}

// ExchangeAuthorizationCode runs the exchange as a strict sequence: code
// lookup, validity check, client/redirect binding check, PKCE
// verification, user lookup, token minting, and only then the atomic
// consume of the code. Any failure aborts the exchange; the consume is the
// last side effect so a failed exchange never spends the code. Every
// code-related failure surfaces as the same invalid-code error so a caller
// cannot probe whether a code is absent, expired, used, or mismatched.
func (s *TokenExchangeService) ExchangeAuthorizationCode(ctx context.Context,
	req *dto.TokenRequest,
) (*dto.TokenResponse, error) {
	authCode, err := s.codes.FindByCode(ctx, req.Code)
	if err != nil {
		s.logger.Error(ctx, "authorization code lookup failed", err)
		return nil, ssoerrors.NewServerError(err)
	}
	if authCode == nil {
		s.logger.Debug(ctx, "authorization code not found")
		return nil, ssoerrors.NewInvalidAuthCode()
	}

	if !authCode.IsValid(s.clock) {
		s.logger.Debug(ctx, "authorization code used or expired", log.Fields{
			"client_id": authCode.ClientID.String(),
		})
		return nil, ssoerrors.NewInvalidAuthCode()
	}

	if !authCode.ClientID.Equals(req.ClientID) || authCode.RedirectURI != req.RedirectURI {
		s.logger.Debug(ctx, "client or redirect URI does not match the code binding")
		return nil, ssoerrors.NewInvalidAuthCode()
	}

	if !s.pkce.Verify(authCode.CodeChallenge, req.CodeVerifier.String()) {
		s.logger.Debug(ctx, "PKCE verification failed", log.Fields{
			"client_id": authCode.ClientID.String(),
			"method":    string(authCode.CodeChallenge.Method()),
		})
		return nil, ssoerrors.NewInvalidAuthCode()
	}

	user, err := s.users.FindByID(ctx, authCode.UserID)
	if err != nil {
		s.logger.Error(ctx, "user lookup failed", err, log.Fields{"user_id": authCode.UserID})
		return nil, ssoerrors.NewServerError(err)
	}
	if user == nil {
		s.logger.Warn(ctx, "authorization code references a missing user", log.Fields{
			"user_id": authCode.UserID,
		})
		return nil, ssoerrors.NewServerError(nil)
	}

	accessToken, err := s.jwt.GenerateAccessToken(AccessTokenPayload{
		Subject:  user.ID,
		Email:    user.Email,
		Username: user.Username,
		Roles:    user.Roles,
		Scope:    authCode.Scope,
		ClientID: authCode.ClientID.String(),
	})
	if err != nil {
		s.logger.Error(ctx, "access token signing failed", err)
		return nil, err
	}

	// Last side effect. Losing the race here means another exchange already
	// spent the code, and this one must fail.
	if _, err := s.codes.ConsumeByCode(ctx, req.Code); err != nil {
		s.logger.Warn(ctx, "authorization code consumed concurrently", log.Fields{
			"client_id": authCode.ClientID.String(),
		})
		return nil, ssoerrors.NewInvalidAuthCode()
	}

	s.logger.Info(ctx, "authorization code exchanged", log.Fields{
		"client_id": authCode.ClientID.String(),
		"user_id":   user.ID,
	})

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwt.TokenTTL().Seconds()),
		Scope:       authCode.Scope,
	}, nil
}
