package memory

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/internal/auth"
)

// UserStore is the reference user repository. Users are immutable once
// added, so lookups can hand out the stored pointers.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byEmail    map[string]*domain.User
	byUsername map[string]*domain.User
	hasher     auth.PasswordHasher
}

// NewUserStore creates an empty store verifying passwords with hasher.
func NewUserStore(hasher auth.PasswordHasher) *UserStore {
	return &UserStore{
		byID:       make(map[string]*domain.User),
		byEmail:    make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
		hasher:     hasher,
	}
}

// Add registers a user. Email and username must be unique.
func (s *UserStore) Add(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[user.ID]; exists {
		return errors.New("user id already exists")
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return errors.New("email already registered")
	}
	if user.Username != "" {
		if _, exists := s.byUsername[user.Username]; exists {
			return errors.New("username already registered")
		}
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	if user.Username != "" {
		s.byUsername[user.Username] = user
	}
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byEmail[domain.NormalizeEmail(email)], nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byUsername[username], nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id], nil
}

// ValidateCredentials authenticates by email or username against the bcrypt
// hash. A miss returns nil without error so the caller cannot distinguish
// an unknown account from a wrong password.
func (s *UserStore) ValidateCredentials(ctx context.Context, emailOrUsername, password string) (*domain.User, error) {
	user, err := s.FindByEmail(ctx, emailOrUsername)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.FindByUsername(ctx, emailOrUsername)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		// Burn a comparison anyway to keep miss timing close to a mismatch.
		_ = s.hasher.Verify(dummyHash, password)
		return nil, nil
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// dummyHash is a bcrypt hash of an unguessable throwaway value.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var _ domain.UserRepository = (*UserStore)(nil)
