package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// PKCEService verifies a code verifier against a stored challenge.
type PKCEService struct{}

// NewPKCEService creates a new PKCE verification use case.
func NewPKCEService() *PKCEService {
	return &PKCEService{}
}

// Verify reports whether the raw verifier matches the stored challenge. A
// mismatch is a plain false, never an error; the challenge value object
// guarantees the method is one of S256 or plain.
func (s *PKCEService) Verify(challenge domain.CodeChallenge, verifier string) bool {
	switch challenge.Method() {
	case domain.ChallengeMethodPlain:
		return challenge.VerifyPlain(verifier)
	case domain.ChallengeMethodS256:
		computed := ComputeS256Challenge(verifier)
		return subtle.ConstantTimeCompare([]byte(challenge.Challenge()), []byte(computed)) == 1
	default:
		return false
	}
}

// ComputeS256Challenge returns base64url(sha256(verifier)) without padding,
// the S256 transformation from RFC 7636.
func ComputeS256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
