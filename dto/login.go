package dto

import (
	"time"

	"github.com/gatehouse-sso/gatehouse/domain"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
)

const minPasswordLen = 6

// LoginRequest is the login use case input. UserAgent and IPAddress are
// filled by the transport layer, not the caller.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
	RememberMe      bool   `json:"remember_me"`

	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// Validate checks the request shape. Credential correctness is the use
// case's job, not the DTO's.
func (r *LoginRequest) Validate() error {
	var fields []ssoerrors.FieldError
	if r.EmailOrUsername == "" {
		fields = append(fields, ssoerrors.FieldError{
			Field: "email_or_username", Message: "email_or_username must not be empty",
		})
	}
	if len(r.Password) < minPasswordLen {
		fields = append(fields, ssoerrors.FieldError{
			Field: "password", Message: "password must be at least 6 characters",
		})
	}
	if len(fields) > 0 {
		return ssoerrors.NewValidationFields(fields)
	}
	return nil
}

// LoginResponse bundles the authenticated user's public profile with the
// created session.
type LoginResponse struct {
	User      domain.PublicProfile `json:"user"`
	SessionID string               `json:"session_id"`
	ExpiresAt time.Time            `json:"expires_at"`
}
