package memory

import (
	"context"
	"sync"

	"github.com/jellydator/ttlcache/v3"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// SessionStore implements the session repository on ttlcache, with a
// user-to-sessions reverse index maintained atomically with the primary
// cache on every delete and eviction.
type SessionStore struct {
	cache *ttlcache.Cache[string, *domain.Session]
	clock domain.Clock

	mu     sync.Mutex
	byUser map[string]map[string]struct{}
}

// NewSessionStore creates the store and starts ttlcache's eviction loop.
func NewSessionStore(clock domain.Clock) *SessionStore {
	store := &SessionStore{
		clock:  clock,
		byUser: make(map[string]map[string]struct{}),
	}
	store.cache = ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.Session](),
	)
	store.cache.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason,
		item *ttlcache.Item[string, *domain.Session],
	) {
		store.unindex(item.Value().UserID, item.Key())
	})
	go store.cache.Start()
	return store
}

// Save stores the session for the remainder of its lifetime.
func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	ttl := session.TTL(s.clock)
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	ids, ok := s.byUser[session.UserID]
	if !ok {
		ids = make(map[string]struct{})
		s.byUser[session.UserID] = ids
	}
	ids[session.ID] = struct{}{}
	s.mu.Unlock()

	s.cache.Set(session.ID, session, ttl)
	return nil
}

// FindByID returns the session, nil when absent or already evicted.
func (s *SessionStore) FindByID(_ context.Context, id string) (*domain.Session, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, nil
	}
	return item.Value(), nil
}

// DeleteByID removes one session. Absent sessions are not an error.
func (s *SessionStore) DeleteByID(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// DeleteByUserID removes every session the user holds.
func (s *SessionStore) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.byUser[userID]))
	for id := range s.byUser[userID] {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.cache.Delete(id)
	}
	return nil
}

// Cleanup forces eviction of expired entries and reports how many went.
func (s *SessionStore) Cleanup(_ context.Context) (int, error) {
	before := s.cache.Len()
	s.cache.DeleteExpired()
	removed := before - s.cache.Len()
	if removed < 0 {
		removed = 0
	}
	return removed, nil
}

// Close stops ttlcache's background goroutine.
func (s *SessionStore) Close() error {
	s.cache.Stop()
	return nil
}

func (s *SessionStore) unindex(userID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ids, ok := s.byUser[userID]; ok {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(s.byUser, userID)
		}
	}
}

var _ domain.SessionRepository = (*SessionStore)(nil)
