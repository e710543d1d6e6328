package domain

import "time"

// DefaultAuthCodeTTLMinutes is how long an authorization code stays
// redeemable unless configured otherwise.
const DefaultAuthCodeTTLMinutes = 1

// AuthCode represents a single-use OAuth 2.0 authorization code bound to a
// user, a client and a PKCE challenge.
type AuthCode struct {
	Code        string    `json:"code"`
	UserID      string    `json:"user_id"`
	ClientID    ClientID  `json:"client_id"`
	RedirectURI string    `json:"redirect_uri"`
	Scope       string    `json:"scope,omitempty"`
	State       string    `json:"state,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	Used        bool      `json:"used"`
	CreatedAt   time.Time `json:"created_at"`

	CodeChallenge CodeChallenge `json:"code_challenge"`
}

// NewAuthCode creates an authorization code expiring ttlMinutes from now.
// A non-positive ttlMinutes still produces an entity; it is simply already
// expired (or expires immediately), which the validity check reflects.
func NewAuthCode(code, userID string, clientID ClientID, redirectURI string,
	challenge CodeChallenge, scope, state string, ttlMinutes int, clock Clock,
) *AuthCode {
	now := clock.Now()
	return &AuthCode{
		Code:          code,
		UserID:        userID,
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		Scope:         scope,
		State:         state,
		ExpiresAt:     now.Add(time.Duration(ttlMinutes) * time.Minute),
		Used:          false,
		CreatedAt:     now,
		CodeChallenge: challenge,
	}
}

// IsExpired reports whether the code's lifetime has passed.
func (a *AuthCode) IsExpired(clock Clock) bool {
	return clock.Now().After(a.ExpiresAt)
}

// IsValid reports whether the code can still be redeemed: never used and
// not expired.
func (a *AuthCode) IsValid(clock Clock) bool {
	return !a.Used && !a.IsExpired(clock)
}

// MarkAsUsed flips the single-use flag. Callers persist the change through
// the repository's consume operation, which performs the flip atomically.
func (a *AuthCode) MarkAsUsed() {
	a.Used = true
}
