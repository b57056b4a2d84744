package auth

import (
	"context"
	"sync"
)

// NewInMemoryCredentialStore returns a CredentialStore backed by a map.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{tokens: make(map[string]string)}
}

// InMemoryCredentialStore implements CredentialStore for tests and local development.
// Users must be registered before tokens can be stored for them.
type InMemoryCredentialStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// AddUser registers a user with no active refresh token.
func (s *InMemoryCredentialStore) AddUser(userID string) {
	s.mu.Lock()
	if _, ok := s.tokens[userID]; !ok {
		s.tokens[userID] = ""
	}
	s.mu.Unlock()
}

func (s *InMemoryCredentialStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[userID]; !ok {
		return ErrUnknownUser
	}
	s.tokens[userID] = token
	return nil
}

func (s *InMemoryCredentialStore) RefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", ErrUnknownUser
	}
	return token, nil
}

func (s *InMemoryCredentialStore) SwapRefreshToken(_ context.Context, userID, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[userID]
	if !ok {
		return ErrUnknownUser
	}
	if stored != current {
		return ErrRefreshTokenReused
	}
	s.tokens[userID] = next
	return nil
}

func (s *InMemoryCredentialStore) ClearRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[userID]; !ok {
		return ErrUnknownUser
	}
	s.tokens[userID] = ""
	return nil
}
