package dto

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
)

func validTokenForm() url.Values {
	return url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {"opaque-code"},
		"redirect_uri":  {"https://example.com/callback"},
		"client_id":     {"valid-client-id-123"},
		"code_verifier": {strings.Repeat("v", 43)},
	}
}

func TestTokenRequestFromForm_Valid(t *testing.T) {
	req, err := TokenRequestFromForm(validTokenForm())
	require.NoError(t, err)
	assert.Equal(t, "authorization_code", req.GrantType)
	assert.Equal(t, "opaque-code", req.Code)
	assert.Equal(t, "valid-client-id-123", req.ClientID.String())
	assert.Equal(t, strings.Repeat("v", 43), req.CodeVerifier.String())
}

func TestTokenRequestFromForm_WrongGrantType(t *testing.T) {
	form := validTokenForm()
	form.Set("grant_type", "client_credentials")

	_, err := TokenRequestFromForm(form)
	require.Error(t, err)
	assert.True(t, ssoerrors.IsValidation(err))
}

func TestTokenRequestFromForm_MalformedVerifierFailsBeforePKCE(t *testing.T) {
	form := validTokenForm()
	form.Set("code_verifier", strings.Repeat("v", 42))

	_, err := TokenRequestFromForm(form)
	require.Error(t, err)

	var ve *ssoerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "code_verifier", ve.Fields[0].Field)
}

func TestTokenRequestFromForm_MissingCode(t *testing.T) {
	form := validTokenForm()
	form.Del("code")

	_, err := TokenRequestFromForm(form)
	require.Error(t, err)
	assert.True(t, ssoerrors.IsValidation(err))
}

func TestLoginRequest_Validate(t *testing.T) {
	valid := &LoginRequest{EmailOrUsername: "alice@example.com", Password: "secret-password"}
	assert.NoError(t, valid.Validate())

	short := &LoginRequest{EmailOrUsername: "alice@example.com", Password: "short"}
	err := short.Validate()
	require.Error(t, err)
	assert.True(t, ssoerrors.IsValidation(err))

	empty := &LoginRequest{}
	err = empty.Validate()
	require.Error(t, err)
	var ve *ssoerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}
