// Package memory provides the reference in-memory repositories. Stores are
// explicit objects owned by the composition root, never ambient globals.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// ErrCodeNotConsumable is returned when a consume finds the code absent,
// expired, or already used.
var ErrCodeNotConsumable = errors.New("authorization code cannot be consumed")

// AuthCodeStore keeps authorization codes in a locked map. ttlcache is not
// used here because consume needs a compare-and-swap on the used flag under
// one critical section; expiry is enforced at read time and by Cleanup.
type AuthCodeStore struct {
	mu    sync.Mutex
	codes map[string]*domain.AuthCode
	clock domain.Clock
}

// NewAuthCodeStore creates an empty store.
func NewAuthCodeStore(clock domain.Clock) *AuthCodeStore {
	return &AuthCodeStore{
		codes: make(map[string]*domain.AuthCode),
		clock: clock,
	}
}

// Save stores a copy of the code.
func (s *AuthCodeStore) Save(_ context.Context, code *domain.AuthCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *code
	s.codes[code.Code] = &cp
	return nil
}

// FindByCode returns a copy of the stored code, nil when absent. Copies
// keep callers from mutating store state outside the consume path.
func (s *AuthCodeStore) FindByCode(_ context.Context, code string) (*domain.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[code]
	if !ok {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

// ConsumeByCode checks validity and flips the used flag inside one critical
// section, so two concurrent consumes of the same code cannot both succeed.
func (s *AuthCodeStore) ConsumeByCode(_ context.Context, code string) (*domain.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[code]
	if !ok || !stored.IsValid(s.clock) {
		return nil, ErrCodeNotConsumable
	}
	stored.MarkAsUsed()
	cp := *stored
	return &cp, nil
}

// Cleanup drops expired codes.
func (s *AuthCodeStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, stored := range s.codes {
		if stored.IsExpired(s.clock) {
			delete(s.codes, key)
		}
	}
	return nil
}

// Len reports how many codes are held, expired ones included.
func (s *AuthCodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

var _ domain.AuthCodeRepository = (*AuthCodeStore)(nil)
