package session

import (
	"context"
	"sync"
	"time"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

// MemorySessionStore implements Store with an in-process map.
// Sessions do not survive a restart; clients simply log in again.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

var _ Store = (*MemorySessionStore)(nil)

// MemorySessionStoreFactory creates a factory function that returns a new
// MemorySessionStore. The factory function implements the StoreFactory type.
func MemorySessionStoreFactory() StoreFactory {
	return func() (Store, error) {
		return NewMemorySessionStore(), nil
	}
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Put implements Store.Put.
func (s *MemorySessionStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = session

	return nil
}

// Get implements Store.Get. Expired sessions are evicted on read and reported
// as unknown.
func (s *MemorySessionStore) Get(_ context.Context, token string) (*domain.Session, bool, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()

		return nil, false, nil
	}

	return session, true, nil
}

// Delete implements Store.Delete.
func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)

	return nil
}

// Close implements Store.Close.
func (s *MemorySessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*domain.Session)

	return nil
}
