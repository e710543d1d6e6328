package services

import (
	"encoding/base64"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gatehouse-sso/gatehouse/domain"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/internal/crypto"
)

// AccessTokenPayload is the application data carried by an access token.
type AccessTokenPayload struct {
	Subject  string
	Email    string
	Username string
	Roles    []string
	Scope    string
	ClientID string
}

// JWTService signs and verifies RS256 access tokens from a loaded RSA key
// pair.
type JWTService struct {
	keys     crypto.KeyLoader
	issuer   string
	audience string
	tokenTTL time.Duration
	clock    domain.Clock
}

// NewJWTService creates the token signing service.
func NewJWTService(keys crypto.KeyLoader, issuer, audience string,
	tokenTTL time.Duration, clock domain.Clock,
) *JWTService {
	return &JWTService{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		tokenTTL: tokenTTL,
		clock:    clock,
	}
}

// TokenTTL returns the configured access token lifetime.
func (s *JWTService) TokenTTL() time.Duration { return s.tokenTTL }

// GenerateAccessToken mints a signed RS256 token carrying the payload plus
// the standard iat/exp/iss/aud/jti claims, with the key ID in the header.
func (s *JWTService) GenerateAccessToken(payload AccessTokenPayload) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":       payload.Subject,
		"email":     payload.Email,
		"username":  payload.Username,
		"roles":     payload.Roles,
		"scope":     payload.Scope,
		"client_id": payload.ClientID,
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenTTL).Unix(),
		"iss":       s.issuer,
		"aud":       s.audience,
		"jti":       uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keys.GetKeyID()

	signed, err := token.SignedString(s.keys.GetPrivateKey())
	if err != nil {
		return "", ssoerrors.NewServerError(err)
	}
	return signed, nil
}

// VerifyToken validates the signature against the public key, plus expiry
// and issuer, and the audience when expectedAudience is non-empty. Every
// failure collapses into the same invalid-token error so callers cannot
// tell an expired token from a forged one.
func (s *JWTService) VerifyToken(tokenString, expectedAudience string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	}
	if expectedAudience != "" {
		opts = append(opts, jwt.WithAudience(expectedAudience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.keys.GetPublicKey(), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ssoerrors.NewInvalidToken().WithCause(err)
	}
	return claims, nil
}

// DecodeToken returns the payload without verifying the signature. For
// diagnostics only; its output must never drive authorization decisions.
func (s *JWTService) DecodeToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ssoerrors.NewInvalidToken().WithCause(err)
	}
	return claims, nil
}

// JSONWebKey is a public key in JWK form.
type JSONWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JSONWebKeySet is the JWKS document served at /.well-known/jwks.json.
type JSONWebKeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// JWKS exposes the active signing key's public half.
func (s *JWTService) JWKS() JSONWebKeySet {
	pub := s.keys.GetPublicKey()
	return JSONWebKeySet{
		Keys: []JSONWebKey{
			{
				Kid: s.keys.GetKeyID(),
				Kty: "RSA",
				Alg: "RS256",
				Use: "sig",
				N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
}
