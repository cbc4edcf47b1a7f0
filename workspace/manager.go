package workspace

import (
	"context"
	"sync"

	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/util"
)

// Manager hands out one Workspace per id, opening each on first use with
// the manager's options.
type Manager struct {
	mu         sync.Mutex
	opts       []Option
	workspaces map[string]*Workspace
	health     observability.HealthChecker
}

// NewManager creates a manager. opts apply to every workspace it opens.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		opts:       opts,
		workspaces: make(map[string]*Workspace),
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if hc, ok := o.store.(observability.HealthChecker); ok {
		m.health = hc
	}
	return m
}

// Get returns the workspace id, opening it if needed. Opening holds the
// manager lock, so concurrent first calls share one rehydration.
func (m *Manager) Get(ctx context.Context, id string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.workspaces[id]; ok {
		return w, nil
	}
	w, err := Open(ctx, id, m.opts...)
	if err != nil {
		return nil, err
	}
	m.workspaces[id] = w
	return w, nil
}

// Open lists the ids of workspaces opened so far, sorted.
func (m *Manager) Open() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return util.SortedKeys(m.workspaces)
}

// Evict drops a workspace from memory; the next Get rehydrates it.
func (m *Manager) Evict(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workspaces, id)
}

// CheckHealth reports the backing store's health, or up without one.
func (m *Manager) CheckHealth(ctx context.Context) observability.Health {
	if m.health != nil {
		return m.health.CheckHealth(ctx)
	}
	return observability.Health{Name: "storage", Status: observability.HealthStatusUp, Message: "not persisted"}
}
