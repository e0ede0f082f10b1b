package session

import (
	"context"
	"sync"
)

// MemorySessionStore is an in-process session store for single-instance deployments
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]map[string]string),
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.sessions[sessionID][key]
	return value, ok, nil
}

func (s *MemorySessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.sessions[sessionID]
	if !ok {
		values = make(map[string]string)
		s.sessions[sessionID] = values
	}
	values[key] = value
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.sessions, sessionID)
	}
	return nil
}
