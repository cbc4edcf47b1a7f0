package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, log *logger.Logger) (storage.Store, error) {
		return NewStorage(cfg.BasePath, log)
	})
}

const fileExt = ".json"

// Storage keeps one file per key below a base directory. The colon
// segments of a key become nested directories, so "ns:ws:progress" lives
// at <base>/ns/ws/progress.json.
type Storage struct {
	basePath string
	log      *logger.Logger
}

// NewStorage creates the base directory if needed.
func NewStorage(basePath string, log *logger.Logger) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{basePath: abs, log: log}, nil
}

// BasePath returns the absolute root directory.
func (s *Storage) BasePath() string { return s.basePath }

func (s *Storage) path(key string) (string, error) {
	parts, err := storage.SplitKey(key)
	if err != nil {
		return "", err
	}
	parts[len(parts)-1] += fileExt
	return filepath.Join(append([]string{s.basePath}, parts...)...), nil
}

// Save writes data atomically: a temp file in the target directory is
// renamed over the old snapshot, so readers never see a partial write.
func (s *Storage) Save(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot.tmp.*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: rename temp file: %w", err)
	}
	return nil
}

// Load reads the file for key.
func (s *Storage) Load(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrEmpty
		}
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// Delete removes the file for key. Returns nil if it does not exist.
func (s *Storage) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

// CheckHealth reports down when the base directory is missing or is not a
// directory.
func (s *Storage) CheckHealth(_ context.Context) observability.Health {
	h := observability.Health{
		Name:    "storage",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"provider": storage.ProviderLocal, "base_path": s.basePath},
	}
	info, err := os.Stat(s.basePath)
	switch {
	case err != nil:
		h.Status, h.Message = observability.HealthStatusDown, err.Error()
	case !info.IsDir():
		h.Status, h.Message = observability.HealthStatusDown, "base path is not a directory"
	}
	return h
}

// compile-time checks
var (
	_ storage.Store               = (*Storage)(nil)
	_ observability.HealthChecker = (*Storage)(nil)
)
