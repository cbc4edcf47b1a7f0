package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by Load when nothing has been saved under a key.
var ErrEmpty = stderrors.New("storage: empty")

// Store persists opaque snapshot bytes under string keys. Implementations
// must be safe for concurrent use.
type Store interface {
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the value stored under key, or ErrEmpty.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keys derives the persistence keys of one workspace.
type Keys struct {
	Namespace string
}

// KeysFor returns the keys of workspace within namespace.
func KeysFor(namespace, workspace string) Keys {
	return Keys{Namespace: namespace + ":" + workspace}
}

// Stage returns the key holding the block snapshot of stage.
func (k Keys) Stage(stage string) string {
	return fmt.Sprintf("%s:stage:%s:blocks", k.Namespace, stage)
}

// Progress returns the key holding the progress gate snapshot.
func (k Keys) Progress() string {
	return k.Namespace + ":progress"
}

// SplitKey breaks a key into its colon-separated segments, rejecting empty
// and relative segments. File-backed stores use it to map keys to paths.
func SplitKey(key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("storage: empty key")
	}
	parts := strings.Split(key, ":")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return nil, fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return parts, nil
}
