package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/gatehouse-sso/gatehouse/domain"
)

// ClientStore is the reference client registry. Registrations are
// immutable; there is no update path in this core.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]*domain.OAuthClient
}

// NewClientStore creates an empty registry.
func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[string]*domain.OAuthClient)}
}

// Add registers a client by its public client_id.
func (s *ClientStore) Add(client *domain.OAuthClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[client.ClientID]; exists {
		return errors.New("client_id already registered")
	}
	s.clients[client.ClientID] = client
	return nil
}

// FindByClientID returns the client, nil when unknown.
func (s *ClientStore) FindByClientID(_ context.Context, clientID string) (*domain.OAuthClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients[clientID], nil
}

var _ domain.OAuthClientRepository = (*ClientStore)(nil)
