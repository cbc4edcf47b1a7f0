package workspace

import (
	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/resilience"
	"github.com/kbukum/blockflow/stage"
	"github.com/kbukum/blockflow/storage"
)

type options struct {
	store     storage.Store
	namespace string
	log       *logger.Logger
	metrics   *observability.Metrics
	retry     resilience.RetryConfig
	stages    []stage.Definition
	storeOpts []block.Option
}

// Option configures a Workspace.
type Option func(*options)

// WithStorage persists the workspace to store under namespace. Without
// it the workspace lives only in memory.
func WithStorage(store storage.Store, namespace string) Option {
	return func(o *options) {
		o.store = store
		o.namespace = namespace
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records operation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRetry overrides the persistence retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

// WithStages replaces the stage catalog.
func WithStages(defs ...stage.Definition) Option {
	return func(o *options) { o.stages = defs }
}

// WithBlockOptions passes options to every stage's block store.
func WithBlockOptions(opts ...block.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

func defaultOptions() options {
	return options{
		namespace: storage.DefaultNamespace,
		retry:     resilience.DefaultRetryConfig(),
	}
}
