package memory

import (
	"context"
	"sync"

	"github.com/frenow/rocketshoes-cart/internal/storage"
)

// Storage keeps values in a map. It is used by tests and by
// STORAGE_BACKEND=memory, where the cart does not survive a restart.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{values: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Ping always succeeds; it lets the memory backend register a readiness
// check like the networked ones.
func (s *Storage) Ping(context.Context) error {
	return nil
}
