package domain

import "context"

// AuthCodeRepository persists authorization codes. Implementations must make
// ConsumeByCode an atomically-checked region: two concurrent consumes of the
// same code must not both succeed.
type AuthCodeRepository interface {
	// Save stores a freshly issued code.
	Save(ctx context.Context, code *AuthCode) error
	// FindByCode returns the code or nil when absent. Read-only.
	FindByCode(ctx context.Context, code string) (*AuthCode, error)
	// ConsumeByCode atomically flips the used flag and returns the entity.
	// It fails when the code is absent, expired, or already used.
	ConsumeByCode(ctx context.Context, code string) (*AuthCode, error)
	// Cleanup evicts expired codes.
	Cleanup(ctx context.Context) error
}

// SessionRepository persists browser sessions.
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	// FindByID returns the session or nil when absent.
	FindByID(ctx context.Context, id string) (*Session, error)
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID revokes every session the user holds.
	DeleteByUserID(ctx context.Context, userID string) error
	// Cleanup evicts expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}

// UserRepository reads user accounts. Lookups return nil without error when
// no user matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// ValidateCredentials authenticates by email or username. It returns nil
	// without error when the credentials do not match any account.
	ValidateCredentials(ctx context.Context, emailOrUsername, password string) (*User, error)
}

// OAuthClientRepository reads the client registry.
type OAuthClientRepository interface {
	// FindByClientID returns the client or nil when absent.
	FindByClientID(ctx context.Context, clientID string) (*OAuthClient, error)
}
