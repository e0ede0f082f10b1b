package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemorySettingsStore is an in-process SettingsStore. Values are kept as JSON
// so reads decode into fresh copies, the same way the MongoDB store behaves.
type MemorySettingsStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	prefix string
}

// NewMemorySettingsStore creates a new in-memory settings store
func NewMemorySettingsStore(prefix string) *MemorySettingsStore {
	return &MemorySettingsStore{
		values: make(map[string][]byte),
		prefix: prefix,
	}
}

func (s *MemorySettingsStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[namespacedKey(s.prefix, key)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode option %s: %w", key, err)
	}
	return true, nil
}

func (s *MemorySettingsStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode option %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[namespacedKey(s.prefix, key)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemorySettingsStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, namespacedKey(s.prefix, key))
	s.mu.Unlock()
	return nil
}

// Keys returns the namespaced keys currently stored
func (s *MemorySettingsStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
