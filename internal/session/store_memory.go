package session

import (
	"context"
	"sync"
	"time"
)

// Session is a live admin session as recorded by the auth service.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// InMemory keeps sessions in process memory. Used in development and tests.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string]Session)}
}

func (s *InMemory) Put(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *InMemory) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// IsActive reports whether the session exists, belongs to userID and has not
// expired at now.
func (s *InMemory) IsActive(_ context.Context, sessionID, userID string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	return sess.UserID == userID && now.Before(sess.ExpiresAt), nil
}
