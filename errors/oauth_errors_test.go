package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusByKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidation("f", "m").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, NewInvalidAuthCode().HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, NewUnauthorized("nope").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, NewInvalidClient("nope").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, NewInvalidToken().HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewServerError(nil).HTTPStatus())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidation("f", "m")))
	assert.Equal(t, KindInvalidAuthCode, KindOf(NewInvalidAuthCode()))
	assert.Equal(t, KindInvalidToken, KindOf(NewInvalidToken()))
	assert.Equal(t, KindUnauthorized, KindOf(NewUnsupportedGrantType()))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnexpected, KindOf(nil))
}

func TestKindOf_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewInvalidAuthCode())
	assert.True(t, IsInvalidAuthCode(wrapped))

	wrappedValidation := fmt.Errorf("handler: %w", NewValidation("f", "m"))
	assert.True(t, IsValidation(wrappedValidation))
}

func TestWithCauseIsNotSerialized(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInvalidToken().WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection refused",
		"internal causes must not leak into the wire message")
}

func TestInvalidAuthCodeCollapsesReasons(t *testing.T) {
	// Absent, expired, used and PKCE-mismatch codes all surface identically.
	a := NewInvalidAuthCode()
	b := NewInvalidAuthCode()
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Description, b.Description)
	assert.Equal(t, CodeInvalidGrant, a.Code)
}

func TestValidationFields(t *testing.T) {
	single := NewValidationFields([]FieldError{{Field: "code", Message: "code must not be empty"}})
	assert.Equal(t, "code must not be empty", single.Description)

	multi := NewValidationFields([]FieldError{
		{Field: "code", Message: "code must not be empty"},
		{Field: "client_id", Message: "client_id must not be empty"},
	})
	require.Len(t, multi.Fields, 2)
	assert.Equal(t, "request validation failed", multi.Description)
}

func TestWithStateEchoesState(t *testing.T) {
	err := NewInvalidAuthCode().WithState("xyz")
	assert.Equal(t, "xyz", err.State)
}
