// Package services implements the use cases of the authorization-code flow.
package services

import (
	"context"

	"github.com/gatehouse-sso/gatehouse/domain"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
)

// ClientValidationService checks that a client exists, the redirect URI is
// registered, and the requested grant type is allowed.
type ClientValidationService struct {
	clients domain.OAuthClientRepository
	logger  log.Logger
}

// NewClientValidationService creates a new client validation use case.
func NewClientValidationService(clients domain.OAuthClientRepository, logger log.Logger) *ClientValidationService {
	return &ClientValidationService{
		clients: clients,
		logger:  logger.Child(log.Fields{"service": "client_validation"}),
	}
}

// Validate runs the checks in order and returns the client's public fields
// on success. The secret is never part of the result. Expected failures are
// logged at debug and returned as typed OAuth errors.
func (s *ClientValidationService) Validate(ctx context.Context,
	clientID domain.ClientID, redirectURI, grantType string,
) (*domain.PublicClient, error) {
	cli, err := s.clients.FindByClientID(ctx, clientID.String())
	if err != nil {
		s.logger.Error(ctx, "client lookup failed", err, log.Fields{"client_id": clientID.String()})
		return nil, ssoerrors.NewServerError(err)
	}
	if cli == nil {
		s.logger.Debug(ctx, "unknown client", log.Fields{"client_id": clientID.String()})
		return nil, ssoerrors.NewInvalidClient("Invalid client")
	}

	if !cli.HasRedirectURI(redirectURI) {
		s.logger.Debug(ctx, "redirect URI not registered", log.Fields{
			"client_id":    clientID.String(),
			"redirect_uri": redirectURI,
		})
		return nil, ssoerrors.NewUnauthorized("Invalid redirect URI")
	}

	if !cli.HasGrantType(grantType) {
		s.logger.Debug(ctx, "grant type not allowed", log.Fields{
			"client_id":  clientID.String(),
			"grant_type": grantType,
		})
		return nil, ssoerrors.NewUnsupportedGrantType()
	}

	public := cli.Public()
	return &public, nil
}
