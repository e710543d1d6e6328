// Package dto holds the request and response shapes of the OAuth2 core.
// Requests are built through parse-and-validate constructors that return
// either a validated struct or a structured list of field errors.
package dto

import (
	"net/url"

	"github.com/gatehouse-sso/gatehouse/domain"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
)

// AuthorizeRequest is a validated authorization-endpoint request.
type AuthorizeRequest struct {
	ClientID      domain.ClientID
	RedirectURI   string
	ResponseType  string
	CodeChallenge domain.CodeChallenge
	State         string
	Scope         string
}

// AuthorizeRequestFromQuery parses and validates the authorization endpoint
// query parameters. All field failures are collected into one validation
// error rather than reported one at a time.
func AuthorizeRequestFromQuery(query url.Values) (*AuthorizeRequest, error) {
	var fields []ssoerrors.FieldError

	clientID, err := domain.NewClientID(query.Get("client_id"))
	if err != nil {
		fields = appendFieldErrors(fields, err)
	}

	redirectURI := query.Get("redirect_uri")
	if !isAbsoluteURL(redirectURI) {
		fields = append(fields, ssoerrors.FieldError{
			Field: "redirect_uri", Message: "redirect_uri must be an absolute URL",
		})
	}

	responseType := query.Get("response_type")
	if responseType != "code" {
		fields = append(fields, ssoerrors.FieldError{
			Field: "response_type", Message: "response_type must be code",
		})
	}

	challenge, err := domain.NewCodeChallenge(
		query.Get("code_challenge"), query.Get("code_challenge_method"))
	if err != nil {
		fields = appendFieldErrors(fields, err)
	}

	if len(fields) > 0 {
		return nil, ssoerrors.NewValidationFields(fields)
	}

	return &AuthorizeRequest{
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		ResponseType:  responseType,
		CodeChallenge: challenge,
		State:         query.Get("state"),
		Scope:         query.Get("scope"),
	}, nil
}

// AuthorizeResponse carries the issued code and the echoed state.
type AuthorizeResponse struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// RedirectURL appends code and state to the client's redirect URI.
func (r *AuthorizeResponse) RedirectURL(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("code", r.Code)
	if r.State != "" {
		q.Set("state", r.State)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}

// appendFieldErrors flattens a validation error into the running field list.
func appendFieldErrors(fields []ssoerrors.FieldError, err error) []ssoerrors.FieldError {
	if ve, ok := err.(*ssoerrors.ValidationError); ok {
		return append(fields, ve.Fields...)
	}
	return append(fields, ssoerrors.FieldError{Field: "request", Message: err.Error()})
}
