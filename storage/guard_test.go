package storage

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/resilience"
)

// stubStore fails every call with err.
type stubStore struct {
	err   error
	calls int
}

func (s *stubStore) Save(context.Context, string, []byte) error { s.calls++; return s.err }
func (s *stubStore) Load(context.Context, string) ([]byte, error) {
	s.calls++
	return nil, s.err
}
func (s *stubStore) Delete(context.Context, string) error { s.calls++; return s.err }
func (s *stubStore) Close() error                         { return nil }

func TestGuardedOpensOnFailures(t *testing.T) {
	stub := &stubStore{err: stderrors.New("connection refused")}
	g := NewGuarded(stub, resilience.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Hour}, logger.NewNop())
	ctx := context.Background()

	_ = g.Save(ctx, "k", nil)
	_ = g.Save(ctx, "k", nil)
	if g.State() != resilience.StateOpen {
		t.Fatalf("expected open circuit, got %s", g.State())
	}
	if err := g.Save(ctx, "k", nil); !stderrors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("open circuit must not reach the backend, got %d calls", stub.calls)
	}
	if h := g.CheckHealth(ctx); h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded health, got %+v", h)
	}
}

func TestGuardedIgnoresEmpty(t *testing.T) {
	stub := &stubStore{err: ErrEmpty}
	g := NewGuarded(stub, resilience.CircuitBreakerConfig{MaxFailures: 1}, nil)
	for i := 0; i < 3; i++ {
		if _, err := g.Load(context.Background(), "k"); !stderrors.Is(err, ErrEmpty) {
			t.Fatalf("expected ErrEmpty, got %v", err)
		}
	}
	if g.State() != resilience.StateClosed {
		t.Errorf("missing keys must not open the circuit")
	}
}
