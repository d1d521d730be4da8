package credential

import (
	"sync"
)

// Store exclusively owns the two refreshable secrets used to authenticate
// marketplace calls. Values start empty and are replaced in place; readers
// must take the current value at call time and never cache it across a
// poll cycle.
type Store struct {
	mu            sync.RWMutex
	sessionCookie string
	accessToken   string
}

func (s *Store) SessionCookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionCookie
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) SetSessionCookie(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionCookie = value
}

func (s *Store) SetAccessToken(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = value
}
