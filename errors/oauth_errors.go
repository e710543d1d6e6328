// Package errors defines the typed error taxonomy for the OAuth2 core.
// Callers branch on the error kind, never on message text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard OAuth2 wire error codes.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeUnauthorizedClient   = "unauthorized_client"
	CodeAccessDenied         = "access_denied"
	CodeUnsupportedGrantType = "unsupported_grant_type"
	CodeInvalidClient        = "invalid_client"
	CodeInvalidGrant         = "invalid_grant"
	CodeInvalidToken         = "invalid_token"
	CodeServerError          = "server_error"
)

// Kind partitions errors into the coarse categories callers respond on.
type Kind int

const (
	// KindUnexpected covers anything not explicitly classified. Maps to 500.
	KindUnexpected Kind = iota
	// KindValidation marks malformed caller input. Maps to 400.
	KindValidation
	// KindUnauthorized marks failed client or credential checks. Maps to 401.
	KindUnauthorized
	// KindInvalidAuthCode collapses absent, expired, used and PKCE-mismatch
	// codes into one category so callers cannot probe code state. Maps to 400.
	KindInvalidAuthCode
	// KindInvalidToken marks signature, expiry or audience failures during
	// verification, without distinguishing them. Maps to 401.
	KindInvalidToken
)

// OAuth2Error is a standardized OAuth 2.0 error with an internal kind for
// classification and wire fields for the response body.
type OAuth2Error struct {
	Kind        Kind   `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	State       string `json:"state,omitempty"`

	cause error
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *OAuth2Error) Unwrap() error { return e.cause }

// WithCause attaches the underlying error, kept for logging only and never
// serialized to callers.
func (e *OAuth2Error) WithCause(err error) *OAuth2Error {
	e.cause = err
	return e
}

// WithState echoes the client-provided state on error redirects.
func (e *OAuth2Error) WithState(state string) *OAuth2Error {
	e.State = state
	return e
}

// HTTPStatus maps the error kind to a response status code.
func (e *OAuth2Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidAuthCode:
		return http.StatusBadRequest
	case KindUnauthorized, KindInvalidToken:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes one invalid field of a request DTO.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the structured field errors produced by the DTO
// parse-and-validate functions.
type ValidationError struct {
	OAuth2Error
	Fields []FieldError `json:"fields,omitempty"`
}

// NewValidation creates a single-field validation error.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		OAuth2Error: OAuth2Error{
			Kind:        KindValidation,
			Code:        CodeInvalidRequest,
			Description: message,
		},
		Fields: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationFields wraps a list of field errors into one error value.
func NewValidationFields(fields []FieldError) *ValidationError {
	desc := "request validation failed"
	if len(fields) == 1 {
		desc = fields[0].Message
	}
	return &ValidationError{
		OAuth2Error: OAuth2Error{
			Kind:        KindValidation,
			Code:        CodeInvalidRequest,
			Description: desc,
		},
		Fields: fields,
	}
}

// NewUnauthorized creates a failed client/credential check error.
func NewUnauthorized(description string) *OAuth2Error {
	return &OAuth2Error{
		Kind:        KindUnauthorized,
		Code:        CodeUnauthorizedClient,
		Description: description,
	}
}

// NewInvalidClient creates an unknown-client error.
func NewInvalidClient(description string) *OAuth2Error {
	return &OAuth2Error{
		Kind:        KindUnauthorized,
		Code:        CodeInvalidClient,
		Description: description,
	}
}

// NewUnsupportedGrantType creates a grant-type rejection.
func NewUnsupportedGrantType() *OAuth2Error {
	return &OAuth2Error{
		Kind:        KindUnauthorized,
		Code:        CodeUnsupportedGrantType,
		Description: "The authorization grant type is not supported",
	}
}

// NewInvalidAuthCode creates the single, deliberately vague error returned
// whenever an authorization code cannot be redeemed.
func NewInvalidAuthCode() *OAuth2Error {
	return &OAuth2Error{
		Kind:        KindInvalidAuthCode,
		Code:        CodeInvalidGrant,
		Description: "Invalid or expired authorization code",
	}
}

// NewInvalidToken creates the single error returned for any token
// verification failure.
func NewInvalidToken() *OAuth2Error {
	return &OAuth2Error{
		Kind:        KindInvalidToken,
		Code:        CodeInvalidToken,
		Description: "Invalid token",
	}
}

// NewServerError wraps an unanticipated fault. The cause is logged with full
// detail and never detailed to the caller.
func NewServerError(err error) *OAuth2Error {
	return &OAuth2Error{
		Kind:        KindUnexpected,
		Code:        CodeServerError,
		Description: "Internal server error",
		cause:       err,
	}
}

// KindOf extracts the kind from any error, KindUnexpected when the error is
// not part of the taxonomy.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	var oe *OAuth2Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindUnexpected
}

// IsValidation reports whether err is malformed-input.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsUnauthorized reports whether err is a failed client/credential check.
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// IsInvalidAuthCode reports whether err is the collapsed auth-code failure.
func IsInvalidAuthCode(err error) bool { return KindOf(err) == KindInvalidAuthCode }

// IsInvalidToken reports whether err is a token verification failure.
func IsInvalidToken(err error) bool { return KindOf(err) == KindInvalidToken }
