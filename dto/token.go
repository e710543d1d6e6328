package dto

import (
	"net/url"

	"github.com/gatehouse-sso/gatehouse/domain"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
)

// TokenRequest is a validated token-endpoint request.
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     domain.ClientID
	CodeVerifier domain.CodeVerifier
}

// TokenRequestFromForm parses and validates the token endpoint form body.
// The verifier is run through the CodeVerifier value object here, so a
// malformed verifier fails as a validation error before any PKCE
// comparison happens.
func TokenRequestFromForm(form url.Values) (*TokenRequest, error) {
	var fields []ssoerrors.FieldError

	grantType := form.Get("grant_type")
	if grantType != domain.GrantTypeAuthorizationCode {
		fields = append(fields, ssoerrors.FieldError{
			Field: "grant_type", Message: "grant_type must be authorization_code",
		})
	}

	code := form.Get("code")
	if code == "" {
		fields = append(fields, ssoerrors.FieldError{
			Field: "code", Message: "code must not be empty",
		})
	}

	redirectURI := form.Get("redirect_uri")
	if !isAbsoluteURL(redirectURI) {
		fields = append(fields, ssoerrors.FieldError{
			Field: "redirect_uri", Message: "redirect_uri must be an absolute URL",
		})
	}

	clientID, err := domain.NewClientID(form.Get("client_id"))
	if err != nil {
		fields = appendFieldErrors(fields, err)
	}

	verifier, err := domain.NewCodeVerifier(form.Get("code_verifier"))
	if err != nil {
		fields = appendFieldErrors(fields, err)
	}

	if len(fields) > 0 {
		return nil, ssoerrors.NewValidationFields(fields)
	}

	return &TokenRequest{
		GrantType:    grantType,
		Code:         code,
		RedirectURI:  redirectURI,
		ClientID:     clientID,
		CodeVerifier: verifier,
	}, nil
}

// TokenResponse is the token endpoint success body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}
