// Package echo exposes the OAuth2 core over HTTP. The core is consumed
// strictly through its use-case services; no handler touches a repository
// directly.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse-sso/gatehouse/dto"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/log"
	"github.com/gatehouse-sso/gatehouse/services"
)

// OAuth2API holds the handler dependencies.
type OAuth2API struct {
	auth      *services.AuthService
	authorize *services.AuthorizationService
	exchange  *services.TokenExchangeService
	jwt       *services.JWTService
	issuer    string
	logger    log.Logger
}

// NewOAuth2API initializes the HTTP surface.
func NewOAuth2API(
	auth *services.AuthService,
	authorize *services.AuthorizationService,
	exchange *services.TokenExchangeService,
	jwt *services.JWTService,
	issuer string,
	logger log.Logger,
) *OAuth2API {
	return &OAuth2API{
		auth:      auth,
		authorize: authorize,
		exchange:  exchange,
		jwt:       jwt,
		issuer:    issuer,
		logger:    logger.Child(log.Fields{"component": "http"}),
	}
}

// RegisterRoutes registers the OAuth2 and session routes.
func (oa *OAuth2API) RegisterRoutes(e *echo.Echo) {
	e.Use(SessionMiddleware(oa.auth))

	e.POST("/auth/login", oa.LoginHandler)
	e.POST("/auth/logout", oa.LogoutHandler)
	e.POST("/auth/sessions/revoke", oa.RevokeSessionsHandler, RequireSession)

	e.GET("/oauth2/authorize", oa.AuthorizeHandler, RequireSession)
	e.POST("/oauth2/token", oa.TokenHandler)

	e.GET("/.well-known/jwks.json", oa.JWKSHandler)
	e.GET("/.well-known/openid-configuration", oa.OpenIDConfigurationHandler)
}

// LoginHandler authenticates credentials and sets the session cookie. The
// cookie lifetime follows the remember-me choice.
func (oa *OAuth2API) LoginHandler(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ssoerrors.NewValidation("body", "malformed request body"))
	}
	req.UserAgent = c.Request().UserAgent()
	req.IPAddress = c.RealIP()

	resp, err := oa.auth.Login(c.Request().Context(), &req)
	if err != nil {
		return writeOAuthError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    resp.SessionID,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, resp)
}

// LogoutHandler deletes the session and clears the cookie.
func (oa *OAuth2API) LogoutHandler(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := oa.auth.Logout(c.Request().Context(), cookie.Value); err != nil {
			return writeOAuthError(c, err)
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}

// RevokeSessionsHandler revokes every session of the logged-in user.
func (oa *OAuth2API) RevokeSessionsHandler(c echo.Context) error {
	session := sessionFromContext(c)
	if err := oa.auth.RevokeUserSessions(c.Request().Context(), session.UserID); err != nil {
		return writeOAuthError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AuthorizeHandler validates the authorization request for the logged-in
// user and redirects back to the client with the issued code and state.
func (oa *OAuth2API) AuthorizeHandler(c echo.Context) error {
	req, err := dto.AuthorizeRequestFromQuery(c.QueryParams())
	if err != nil {
		return writeOAuthError(c, err)
	}

	session := sessionFromContext(c)
	resp, err := oa.authorize.GenerateAuthCode(c.Request().Context(), session.UserID, req)
	if err != nil {
		return writeOAuthError(c, err)
	}

	redirectURL, err := resp.RedirectURL(req.RedirectURI)
	if err != nil {
		oa.logger.Error(c.Request().Context(), "failed to build redirect URL", err)
		return writeOAuthError(c, ssoerrors.NewServerError(err))
	}
	return c.Redirect(http.StatusFound, redirectURL)
}

// TokenHandler redeems an authorization code for an access token.
func (oa *OAuth2API) TokenHandler(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ssoerrors.NewValidation("body", "malformed form body"))
	}
	req, err := dto.TokenRequestFromForm(form)
	if err != nil {
		return writeOAuthError(c, err)
	}

	resp, err := oa.exchange.ExchangeAuthorizationCode(c.Request().Context(), req)
	if err != nil {
		return writeOAuthError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// JWKSHandler serves the public signing keys.
func (oa *OAuth2API) JWKSHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, oa.jwt.JWKS())
}

// OpenIDConfiguration is the discovery document for this provider.
type OpenIDConfiguration struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	JwksURI                       string   `json:"jwks_uri"`
	ResponseTypesSupported        []string `json:"response_types_supported"`
	GrantTypesSupported           []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethods      []string `json:"token_endpoint_auth_methods_supported"`
	SubjectTypesSupported         []string `json:"subject_types_supported"`
	IDTokenSigningAlgValues       []string `json:"id_token_signing_alg_values_supported"`
}

// OpenIDConfigurationHandler serves the discovery document.
func (oa *OAuth2API) OpenIDConfigurationHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, OpenIDConfiguration{
		Issuer:                        oa.issuer,
		AuthorizationEndpoint:         oa.issuer + "/oauth2/authorize",
		TokenEndpoint:                 oa.issuer + "/oauth2/token",
		JwksURI:                       oa.issuer + "/.well-known/jwks.json",
		ResponseTypesSupported:        []string{"code"},
		GrantTypesSupported:           []string{"authorization_code"},
		CodeChallengeMethodsSupported: []string{"S256", "plain"},
		TokenEndpointAuthMethods:      []string{"none"},
		SubjectTypesSupported:         []string{"public"},
		IDTokenSigningAlgValues:       []string{"RS256"},
	})
}

// writeOAuthError maps the typed error taxonomy onto HTTP responses.
// Unexpected faults become an opaque server error; the detail stays in the
// logs only.
func writeOAuthError(c echo.Context, err error) error {
	var ve *ssoerrors.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(ve.HTTPStatus(), ve)
	}
	var oe *ssoerrors.OAuth2Error
	if errors.As(err, &oe) {
		return c.JSON(oe.HTTPStatus(), oe)
	}
	return c.JSON(http.StatusInternalServerError, ssoerrors.NewServerError(err))
}
