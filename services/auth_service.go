package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/dto"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
)

// AuthService handles login, logout and session revocation.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	clock    domain.Clock
	logger   log.Logger
}

// NewAuthService creates the login use case.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository,
	clock domain.Clock, logger log.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		clock:    clock,
		logger:   logger.Child(log.Fields{"service": "auth"}),
	}
}

// Login validates the request, authenticates the credentials, rejects
// inactive accounts, and creates a session whose TTL follows rememberMe.
// Malformed input and bad credentials fail with distinct error types so
// the transport can pick status codes without parsing messages.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.ValidateCredentials(ctx, req.EmailOrUsername, req.Password)
	if err != nil {
		s.logger.Error(ctx, "credential validation failed", err)
		return nil, ssoerrors.NewServerError(err)
	}
	if user == nil {
		s.logger.Debug(ctx, "login rejected: bad credentials")
		return nil, ssoerrors.NewUnauthorized("Invalid credentials")
	}
	if !user.CanLogin() {
		s.logger.Debug(ctx, "login rejected: inactive account", log.Fields{"user_id": user.ID})
		return nil, ssoerrors.NewUnauthorized("Account is not active")
	}

	session := domain.NewSession(uuid.NewString(), user.ID, req.RememberMe, s.clock)
	session.UserAgent = req.UserAgent
	session.IPAddress = req.IPAddress
	session.Metadata["login_method"] = "password"
	session.Metadata["login_at"] = s.clock.ISOString()

	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error(ctx, "failed to persist session", err, log.Fields{"user_id": user.ID})
		return nil, ssoerrors.NewServerError(err)
	}

	s.logger.Info(ctx, "user logged in", log.Fields{
		"user_id":     user.ID,
		"remember_me": req.RememberMe,
	})

	return &dto.LoginResponse{
		User:      user.Public(),
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// ValidateSession resolves a session ID to a live session, nil when the
// session is absent or expired. The session middleware calls this on every
// authorize request.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, ssoerrors.NewServerError(err)
	}
	if session == nil || !session.IsValid(s.clock) {
		return nil, nil
	}
	return session, nil
}

// Logout deletes the session. Deleting an absent session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		s.logger.Error(ctx, "failed to delete session", err)
		return ssoerrors.NewServerError(err)
	}
	s.logger.Debug(ctx, "session deleted")
	return nil
}

// RevokeUserSessions deletes every session the user holds.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Error(ctx, "failed to revoke user sessions", err, log.Fields{"user_id": userID})
		return ssoerrors.NewServerError(err)
	}
	s.logger.Info(ctx, "user sessions revoked", log.Fields{"user_id": userID})
	return nil
}
