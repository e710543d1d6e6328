package domain

import (
	"crypto/subtle"
	"encoding/json"
	"strings"

	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
)

// CodeChallengeMethod is the PKCE transformation applied to the verifier.
type CodeChallengeMethod string

const (
	// ChallengeMethodS256 hashes the verifier with SHA-256 before encoding.
	ChallengeMethodS256 CodeChallengeMethod = "S256"
	// ChallengeMethodPlain compares the verifier to the challenge directly.
	ChallengeMethodPlain CodeChallengeMethod = "plain"
)

const (
	clientIDMinLen = 8
	clientIDMaxLen = 128

	codeChallengeMinLen = 43

	codeVerifierMinLen = 43
	codeVerifierMaxLen = 128
)

// isBase64URL reports whether s consists only of the unpadded base64url
// alphabet [A-Za-z0-9_-].
func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return len(s) > 0
}

// ClientID is a validated OAuth2 client identifier.
type ClientID struct {
	value string
}

// NewClientID validates and wraps a raw client identifier. The value is
// trimmed and must be 8-128 characters long.
func NewClientID(raw string) (ClientID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ClientID{}, ssoerrors.NewValidation("client_id", "client_id must not be empty")
	}
	if len(v) < clientIDMinLen || len(v) > clientIDMaxLen {
		return ClientID{}, ssoerrors.NewValidation("client_id", "client_id must be between 8 and 128 characters")
	}
	return ClientID{value: v}, nil
}

func (c ClientID) String() string { return c.value }

// Equals compares two client identifiers by value.
func (c ClientID) Equals(other ClientID) bool { return c.value == other.value }

// RestoreClientID rebuilds an identifier from a persisted value without
// re-validating it. For repository use only.
func RestoreClientID(value string) ClientID {
	return ClientID{value: value}
}

// MarshalJSON serializes the identifier as a bare string.
func (c ClientID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.value)
}

// UnmarshalJSON restores a previously validated identifier without
// re-validating; stored values already passed NewClientID.
func (c *ClientID) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.value)
}

// CodeChallenge is a validated PKCE code challenge together with its method.
type CodeChallenge struct {
	challenge string
	method    CodeChallengeMethod
}

// NewCodeChallenge validates and wraps a PKCE challenge. The challenge must
// be at least 43 characters of the base64url alphabet, and the method must
// be S256 or plain.
func NewCodeChallenge(challenge, method string) (CodeChallenge, error) {
	if len(challenge) < codeChallengeMinLen {
		return CodeChallenge{}, ssoerrors.NewValidation("code_challenge", "code_challenge must be at least 43 characters")
	}
	if !isBase64URL(challenge) {
		return CodeChallenge{}, ssoerrors.NewValidation("code_challenge", "code_challenge contains characters outside the base64url alphabet")
	}
	m := CodeChallengeMethod(method)
	if m != ChallengeMethodS256 && m != ChallengeMethodPlain {
		return CodeChallenge{}, ssoerrors.NewValidation("code_challenge_method", "code_challenge_method must be S256 or plain")
	}
	return CodeChallenge{challenge: challenge, method: m}, nil
}

func (c CodeChallenge) Challenge() string           { return c.challenge }
func (c CodeChallenge) Method() CodeChallengeMethod { return c.method }

// RestoreCodeChallenge rebuilds a challenge from persisted parts without
// re-validating them. For repository use only.
func RestoreCodeChallenge(challenge string, method CodeChallengeMethod) CodeChallenge {
	return CodeChallenge{challenge: challenge, method: method}
}

type codeChallengeJSON struct {
	Challenge string `json:"challenge"`
	Method    string `json:"method"`
}

// MarshalJSON serializes the challenge with its method.
func (c CodeChallenge) MarshalJSON() ([]byte, error) {
	return json.Marshal(codeChallengeJSON{Challenge: c.challenge, Method: string(c.method)})
}

// UnmarshalJSON restores a previously validated challenge.
func (c *CodeChallenge) UnmarshalJSON(data []byte) error {
	var raw codeChallengeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.challenge = raw.Challenge
	c.method = CodeChallengeMethod(raw.Method)
	return nil
}

// VerifyPlain compares a verifier against the challenge in constant time.
// Only meaningful when the method is plain.
func (c CodeChallenge) VerifyPlain(verifier string) bool {
	if c.method != ChallengeMethodPlain {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.challenge), []byte(verifier)) == 1
}

// CodeVerifier is a validated PKCE code verifier.
type CodeVerifier struct {
	value string
}

// NewCodeVerifier validates and wraps a PKCE verifier: 43-128 characters of
// the base64url alphabet.
func NewCodeVerifier(raw string) (CodeVerifier, error) {
	if len(raw) < codeVerifierMinLen || len(raw) > codeVerifierMaxLen {
		return CodeVerifier{}, ssoerrors.NewValidation("code_verifier", "code_verifier must be between 43 and 128 characters")
	}
	if !isBase64URL(raw) {
		return CodeVerifier{}, ssoerrors.NewValidation("code_verifier", "code_verifier contains characters outside the base64url alphabet")
	}
	return CodeVerifier{value: raw}, nil
}

func (v CodeVerifier) String() string { return v.value }
