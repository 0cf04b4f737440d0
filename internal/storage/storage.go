package storage

import (
	"errors"
	"sync"

	"github.com/nesventory/identifier/internal/metrics"
	"github.com/nesventory/identifier/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore holds review sessions in memory. Sessions handed out are
// copies; all changes go through Set or Update.
type SessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, false
	}
	return session.Clone(), true
}

func (s *SessionStore) Set(sessionID string, session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session.Clone()
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// Update applies fn to a copy of the session and stores the copy only if
// fn succeeds, so a failed update leaves the session untouched
func (s *SessionStore) Update(sessionID string, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	updated := session.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.sessions[sessionID] = updated
	return updated.Clone(), nil
}

func (s *SessionStore) GetAll() map[string]*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v.Clone()
	}
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}
