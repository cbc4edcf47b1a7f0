package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	rediscli "github.com/kbukum/blockflow/redis"
	"github.com/kbukum/blockflow/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderRedis, func(cfg storage.Config, log *logger.Logger) (storage.Store, error) {
		client, err := rediscli.New(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return NewStore(client), nil
	})
}

// Store keeps snapshots as plain redis strings. Keys are used as-is; the
// namespace is already part of every key.
type Store struct {
	client *rediscli.Client
	ttl    time.Duration
}

// NewStore creates a store on top of client, expiring keys after the
// client's configured TTL.
func NewStore(client *rediscli.Client) *Store {
	cfg := client.Config()
	return &Store{client: client, ttl: cfg.Expiration()}
}

// Save stores data under key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("storage: redis save %q: %w", key, err)
	}
	return nil
}

// Load returns the data stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		if rediscli.IsNil(err) {
			return nil, storage.ErrEmpty
		}
		return nil, fmt.Errorf("storage: redis load %q: %w", key, err)
	}
	return data, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		return fmt.Errorf("storage: redis delete %q: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error { return s.client.Close() }

// CheckHealth pings the server.
func (s *Store) CheckHealth(ctx context.Context) observability.Health {
	cfg := s.client.Config()
	h := observability.Health{
		Name:    "storage",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"provider": storage.ProviderRedis, "addr": cfg.Addr},
	}
	if err := s.client.Ping(ctx); err != nil {
		h.Status, h.Message = observability.HealthStatusDown, err.Error()
	}
	return h
}

var (
	_ storage.Store               = (*Store)(nil)
	_ observability.HealthChecker = (*Store)(nil)
)
