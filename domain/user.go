package domain

import (
	"strings"
	"time"
)

// User represents an account in the system. Users are immutable after
// creation in this core; there is no update path.
type User struct {
	ID            string    `json:"id" bson:"_id"`
	Email         string    `json:"email" bson:"email"`
	Username      string    `json:"username,omitempty" bson:"username,omitempty"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	Roles         []string  `json:"roles" bson:"roles"`
	IsActive      bool      `json:"is_active" bson:"is_active"`
	EmailVerified bool      `json:"email_verified" bson:"email_verified"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// NewUser creates an active user with a normalized email. Empty roles
// default to ["user"].
func NewUser(id, email, username, passwordHash string, roles []string, clock Clock) *User {
	if len(roles) == 0 {
		roles = []string{"user"}
	}
	now := clock.Now()
	return &User{
		ID:           id,
		Email:        NormalizeEmail(email),
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lowercases and trims an email address for storage and
// lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive
}

// PublicProfile is the portion of a user safe to hand back to callers.
type PublicProfile struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Username      string   `json:"username,omitempty"`
	Roles         []string `json:"roles"`
	EmailVerified bool     `json:"email_verified"`
}

// Public returns the caller-safe projection of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Roles:         u.Roles,
		EmailVerified: u.EmailVerified,
	}
}
