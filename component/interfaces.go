package component

import (
	"context"

	"github.com/kbukum/blockflow/observability"
)

// Component is a lifecycle-managed part of the running service.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type funcComponent struct {
	name  string
	start func(context.Context) error
	stop  func(context.Context) error
	check observability.HealthChecker
}

// New builds a Component from plain functions. Either function may be nil.
func New(name string, start, stop func(context.Context) error) Component {
	return &funcComponent{name: name, start: start, stop: stop}
}

// WithHealth builds a Component that also reports health through check.
func WithHealth(name string, start, stop func(context.Context) error, check observability.HealthChecker) Component {
	return &funcComponent{name: name, start: start, stop: stop, check: check}
}

func (f *funcComponent) Name() string { return f.name }

func (f *funcComponent) Start(ctx context.Context) error {
	if f.start == nil {
		return nil
	}
	return f.start(ctx)
}

func (f *funcComponent) Stop(ctx context.Context) error {
	if f.stop == nil {
		return nil
	}
	return f.stop(ctx)
}

func (f *funcComponent) checker() observability.HealthChecker { return f.check }
