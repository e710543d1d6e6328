package domain

import "time"

const (
	// SessionTTL is the default browser session lifetime.
	SessionTTL = time.Hour
	// RememberMeTTL is the extended lifetime for remember-me sessions.
	RememberMeTTL = 30 * 24 * time.Hour
)

// Session represents an active browser session gating the authorize step.
type Session struct {
	ID        string            `json:"id" bson:"_id"`
	UserID    string            `json:"user_id" bson:"user_id"`
	ExpiresAt time.Time         `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UserAgent string            `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	IPAddress string            `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// NewSession creates a session for the user with a TTL selected by
// rememberMe: one hour normally, thirty days when set.
func NewSession(id, userID string, rememberMe bool, clock Clock) *Session {
	ttl := SessionTTL
	if rememberMe {
		ttl = RememberMeTTL
	}
	now := clock.Now()
	return &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		Metadata:  map[string]string{},
	}
}

// IsExpired reports whether the session lifetime has passed.
func (s *Session) IsExpired(clock Clock) bool {
	return !clock.Now().Before(s.ExpiresAt)
}

// IsValid reports whether the session can still authorize requests.
func (s *Session) IsValid(clock Clock) bool {
	return !s.IsExpired(clock)
}

// TTL returns the remaining lifetime, zero if already expired.
func (s *Session) TTL(clock Clock) time.Duration {
	remaining := s.ExpiresAt.Sub(clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
