package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/blockflow/logger"
)

// Factory creates a Store from configuration.
type Factory func(cfg Config, log *logger.Logger) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend factory for the given provider name.
// Backend packages call this from init, so importing them is enough to
// make them available to New.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the Store selected by cfg.Provider. The provider's package
// must have been imported so its factory is registered.
func New(cfg Config, log *logger.Logger) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: provider %q not registered (available: %s)",
			cfg.Provider, strings.Join(Providers(), ", "))
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", map[string]interface{}{
		"provider":  cfg.Provider,
		"namespace": cfg.Namespace,
	})
	return f(cfg, l)
}
