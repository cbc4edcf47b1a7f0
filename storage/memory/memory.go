package memory

import (
	"context"
	"sync"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ storage.Config, _ *logger.Logger) (storage.Store, error) {
		return New(), nil
	})
}

// Store keeps snapshots in process memory. Contents are lost on exit.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Save stores a copy of data under key.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Load returns a copy of the data stored under key.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, storage.ErrEmpty
	}
	return append([]byte(nil), data...), nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// CheckHealth always reports up.
func (s *Store) CheckHealth(_ context.Context) observability.Health {
	return observability.Health{Name: "storage", Status: observability.HealthStatusUp, Details: map[string]string{"provider": storage.ProviderMemory}}
}

var (
	_ storage.Store               = (*Store)(nil)
	_ observability.HealthChecker = (*Store)(nil)
)
