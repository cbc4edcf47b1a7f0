package storage

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/resilience"
)

// Guarded wraps a Store with a circuit breaker. Once the backend keeps
// failing, calls return resilience.ErrCircuitOpen immediately until the
// breaker's timeout lets a probe through. ErrEmpty is not a failure.
type Guarded struct {
	Store
	cb *resilience.CircuitBreaker
}

// NewGuarded wraps store. State changes are logged.
func NewGuarded(store Store, cfg resilience.CircuitBreakerConfig, log *logger.Logger) *Guarded {
	if cfg.Name == "" {
		cfg.Name = "storage"
	}
	cfg.IsFailure = func(err error) bool { return !stderrors.Is(err, ErrEmpty) }
	cfg.OnStateChange = func(name string, from, to resilience.State) {
		if log != nil {
			log.Warn("circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
		}
	}
	return &Guarded{Store: store, cb: resilience.NewCircuitBreaker(cfg)}
}

// Save saves through the breaker.
func (g *Guarded) Save(ctx context.Context, key string, data []byte) error {
	return g.cb.Execute(func() error { return g.Store.Save(ctx, key, data) })
}

// Load loads through the breaker.
func (g *Guarded) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := g.cb.Execute(func() error {
		var err error
		data, err = g.Store.Load(ctx, key)
		return err
	})
	return data, err
}

// Delete deletes through the breaker.
func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.cb.Execute(func() error { return g.Store.Delete(ctx, key) })
}

// State returns the breaker state.
func (g *Guarded) State() resilience.State { return g.cb.State() }

// CheckHealth reports the wrapped store's health, degraded while the
// circuit is not closed.
func (g *Guarded) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "storage", Status: observability.HealthStatusUp}
	if hc, ok := g.Store.(observability.HealthChecker); ok {
		h = hc.CheckHealth(ctx)
	}
	if state := g.cb.State(); state != resilience.StateClosed && h.Status == observability.HealthStatusUp {
		h.Status = observability.HealthStatusDegraded
		h.Message = "circuit " + state.String()
	}
	return h
}

var (
	_ Store                       = (*Guarded)(nil)
	_ observability.HealthChecker = (*Guarded)(nil)
)
