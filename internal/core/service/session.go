package service

import (
	"sync"

	"github.com/google/uuid"

	"securetodo/internal/core/domain"
)

// Session holds the logged in user in memory. Nothing survives a restart.
type Session struct {
	mu   sync.RWMutex
	id   uuid.UUID
	user *domain.User
}

func NewSession() *Session {
	return &Session{}
}

// Set makes user the current one and starts a new session id.
func (s *Session) Set(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = uuid.New()
	s.user = &user
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = uuid.Nil
	s.user = nil
}

func (s *Session) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return domain.User{}, false
	}

	return *s.user, true
}

// UserID returns 0 when nobody is logged in.
func (s *Session) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return 0
	}

	return s.user.ID
}

func (s *Session) ID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.id
}
