package workspace

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/capacity"
	"github.com/kbukum/blockflow/chain"
	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/resilience"
	"github.com/kbukum/blockflow/rule"
	"github.com/kbukum/blockflow/stage"
	"github.com/kbukum/blockflow/storage"
	"github.com/kbukum/blockflow/validation"
)

const component = "workspace"

// Workspace is one user's pipeline: a block store per stage plus the
// progress gate. Every method runs under a single mutex, so each call is
// one atomic turn. Committed changes are written through to storage.
type Workspace struct {
	mu      sync.Mutex
	id      string
	defs    []stage.Definition
	stores  map[stage.ID]*block.Store
	gate    *progress.Gate
	store   storage.Store
	keys    storage.Keys
	log     *logger.Logger
	metrics *observability.Metrics
	retry   resilience.RetryConfig
}

// Open builds the workspace id and rehydrates it from storage. Missing
// snapshots start from seeded defaults; corrupt ones are logged and
// replaced by defaults. Either way the defaults are written back so seeded
// ids stay stable across sessions. A storage read failure is returned.
func Open(ctx context.Context, id string, opts ...Option) (*Workspace, error) {
	if err := validation.Identifier("workspace", id); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}
	if len(o.stages) == 0 {
		o.stages = stage.All()
	}

	steps := make([]progress.Step, 0, len(o.stages))
	for _, def := range o.stages {
		steps = append(steps, def.Step)
	}

	w := &Workspace{
		id:      id,
		defs:    o.stages,
		stores:  make(map[stage.ID]*block.Store, len(o.stages)),
		gate:    progress.NewGate(steps...),
		store:   o.store,
		keys:    storage.KeysFor(o.namespace, id),
		log:     o.log.WithComponent(component).WithFields(logger.Fields(logger.FieldWorkspace, id)),
		metrics: o.metrics,
		retry:   o.retry,
	}
	for _, def := range o.stages {
		w.stores[def.ID] = block.NewStore(def.Registry, o.storeOpts...)
	}

	ctx, op := observability.StartOperation(ctx, w.metrics, component, "open", attribute.String(observability.AttrWorkspace, id))
	err := w.rehydrate(ctx)
	op.End(ctx, err)
	if err != nil {
		return nil, err
	}
	w.log.Debug("workspace opened")
	return w, nil
}

func (w *Workspace) rehydrate(ctx context.Context) error {
	for _, def := range w.defs {
		s := w.stores[def.ID]
		raw, err := w.load(ctx, w.keys.Stage(string(def.ID)))
		if err != nil {
			return err
		}
		if raw == nil {
			s.Seed()
			w.saveStage(ctx, def.ID)
			continue
		}
		instances, err := DecodeStage(def.Registry, raw)
		if err == nil {
			err = s.Restore(instances)
		}
		if err != nil {
			w.log.Error("discarding unreadable stage snapshot", logger.MergeWithError(
				logger.Fields(logger.FieldStage, def.ID, logger.FieldKey, w.keys.Stage(string(def.ID))), err))
			s.Reset()
			w.saveStage(ctx, def.ID)
		}
	}

	raw, err := w.load(ctx, w.keys.Progress())
	if err != nil || raw == nil {
		return err
	}
	snap, err := DecodeProgress(raw)
	if err == nil {
		err = w.gate.Restore(snap)
	}
	if err != nil {
		w.log.Error("discarding unreadable progress snapshot", logger.MergeWithError(
			logger.Fields(logger.FieldKey, w.keys.Progress()), err))
	}
	return nil
}

// load returns nil, nil when there is no storage or nothing saved.
func (w *Workspace) load(ctx context.Context, key string) ([]byte, error) {
	if w.store == nil {
		return nil, nil
	}
	var raw []byte
	err := resilience.RetryFunc(ctx, w.retryConfig(), func() error {
		var err error
		raw, err = w.store.Load(ctx, key)
		return err
	})
	if stderrors.Is(err, storage.ErrEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Persistence(key, err)
	}
	return raw, nil
}

func (w *Workspace) retryConfig() resilience.RetryConfig {
	cfg := w.retry
	cfg.RetryIf = func(err error) bool {
		return !stderrors.Is(err, storage.ErrEmpty) && resilience.DefaultRetryIf(err)
	}
	return cfg
}

// save writes through with retries. Failures are logged and counted; the
// in-memory state stays authoritative.
func (w *Workspace) save(ctx context.Context, key string, encode func() ([]byte, error)) {
	if w.store == nil {
		return
	}
	data, err := encode()
	if err == nil {
		err = resilience.RetryFunc(ctx, w.retryConfig(), func() error {
			return w.store.Save(ctx, key, data)
		})
	}
	if err != nil {
		w.log.Warn("snapshot write failed", logger.MergeWithError(logger.Fields(logger.FieldKey, key), err))
		if w.metrics != nil {
			w.metrics.RecordError(ctx, string(errors.ErrCodePersistence), "storage")
		}
	}
}

func (w *Workspace) saveStage(ctx context.Context, id stage.ID) {
	s := w.stores[id]
	w.save(ctx, w.keys.Stage(string(id)), func() ([]byte, error) { return EncodeStage(s.List()) })
}

func (w *Workspace) saveProgress(ctx context.Context) {
	w.save(ctx, w.keys.Progress(), func() ([]byte, error) { return EncodeProgress(w.gate) })
}

// ID returns the workspace id.
func (w *Workspace) ID() string { return w.id }

// Stages returns the stage definitions in pipeline order.
func (w *Workspace) Stages() []stage.Definition {
	return append([]stage.Definition(nil), w.defs...)
}

func (w *Workspace) definition(id stage.ID) (stage.Definition, *block.Store, error) {
	for _, def := range w.defs {
		if def.ID == id {
			return def, w.stores[id], nil
		}
	}
	return stage.Definition{}, nil, errors.UnknownStage(string(id))
}

// finish ends the operation and logs its outcome. Structural errors are
// logged at error level, everything else at debug.
func (w *Workspace) finish(ctx context.Context, op *observability.Operation, name string, fields map[string]interface{}, err error) {
	op.End(ctx, err)
	fields[logger.FieldOperation] = name
	fields[logger.FieldDuration] = op.Duration().Milliseconds()
	switch {
	case err == nil:
		w.log.Debug("workspace operation", fields)
	case errors.IsStructural(err):
		w.log.Error("workspace invariant violated", logger.MergeWithError(fields, err))
	default:
		fields[logger.FieldStatus] = observability.StatusOf(err)
		w.log.Debug("workspace operation rejected", logger.MergeWithError(fields, err))
	}
}

// mutate runs fn against a stage's store and writes the stage through when
// fn succeeds.
func (w *Workspace) mutate(ctx context.Context, name string, id stage.ID, fields map[string]interface{}, fn func(*block.Store) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, op := observability.StartOperation(ctx, w.metrics, component, name,
		attribute.String(observability.AttrWorkspace, w.id),
		attribute.String(observability.AttrStage, string(id)))
	fields[logger.FieldStage] = id

	_, s, err := w.definition(id)
	if err == nil {
		err = fn(s)
	}
	if err == nil {
		w.saveStage(ctx, id)
	}
	w.finish(ctx, op, name, fields, err)
	return err
}

// read runs fn against a stage under the lock without persisting.
func (w *Workspace) read(id stage.ID, fn func(stage.Definition, *block.Store) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	def, s, err := w.definition(id)
	if err != nil {
		return err
	}
	return fn(def, s)
}

// Blocks lists a stage's instances in creation order.
func (w *Workspace) Blocks(id stage.ID) ([]block.Instance, error) {
	var out []block.Instance
	err := w.read(id, func(_ stage.Definition, s *block.Store) error {
		out = s.List()
		return nil
	})
	return out, err
}

// Block returns one instance.
func (w *Workspace) Block(id stage.ID, blockID string) (block.Instance, error) {
	var out block.Instance
	err := w.read(id, func(_ stage.Definition, s *block.Store) error {
		var err error
		out, err = s.Get(blockID)
		return err
	})
	return out, err
}

// AddBlock creates an instance of typeKey at pos.
func (w *Workspace) AddBlock(ctx context.Context, id stage.ID, typeKey string, pos block.Position) (block.Instance, error) {
	var inst block.Instance
	err := w.mutate(ctx, "add_block", id, logger.Fields(logger.FieldTypeKey, typeKey), func(s *block.Store) error {
		var err error
		inst, err = s.Add(typeKey, pos)
		return err
	})
	return inst, err
}

// RemoveBlock deletes an instance, leaving its former neighbours unlinked.
func (w *Workspace) RemoveBlock(ctx context.Context, id stage.ID, blockID string) error {
	return w.mutate(ctx, "remove_block", id, logger.Fields(logger.FieldBlockID, blockID), func(s *block.Store) error {
		return s.Remove(blockID)
	})
}

// Connect links from's output to to's input.
func (w *Workspace) Connect(ctx context.Context, id stage.ID, from, to string) error {
	return w.mutate(ctx, "connect", id, logger.Fields("from", from, "to", to), func(s *block.Store) error {
		return s.Connect(from, to)
	})
}

// Disconnect removes the link from -> to.
func (w *Workspace) Disconnect(ctx context.Context, id stage.ID, from, to string) error {
	return w.mutate(ctx, "disconnect", id, logger.Fields("from", from, "to", to), func(s *block.Store) error {
		return s.Disconnect(from, to)
	})
}

// MoveBlock changes an instance's canvas position.
func (w *Workspace) MoveBlock(ctx context.Context, id stage.ID, blockID string, pos block.Position) error {
	v := validation.New().Finite("position.x", pos.X).Finite("position.y", pos.Y)
	if err := v.Validate(); err != nil {
		return err
	}
	return w.mutate(ctx, "move_block", id, logger.Fields(logger.FieldBlockID, blockID), func(s *block.Store) error {
		return s.Move(blockID, pos)
	})
}

// SetBlockData replaces an instance's configuration. raw is decoded onto
// the type's defaults and validated.
func (w *Workspace) SetBlockData(ctx context.Context, id stage.ID, blockID string, raw json.RawMessage) (block.Instance, error) {
	var inst block.Instance
	err := w.mutate(ctx, "set_block_data", id, logger.Fields(logger.FieldBlockID, blockID), func(s *block.Store) error {
		cur, err := s.Get(blockID)
		if err != nil {
			return err
		}
		desc, err := s.Registry().Get(cur.TypeKey)
		if err != nil {
			return err
		}
		data, err := block.DecodePayload(desc, raw)
		if err != nil {
			return err
		}
		if err := s.SetData(blockID, data); err != nil {
			return err
		}
		inst, err = s.Get(blockID)
		return err
	})
	return inst, err
}

// ResetStage discards a stage's canvas and re-seeds its protected blocks.
// The progress gate is not touched.
func (w *Workspace) ResetStage(ctx context.Context, id stage.ID) ([]block.Instance, error) {
	var out []block.Instance
	err := w.mutate(ctx, "reset_stage", id, logger.Fields(), func(s *block.Store) error {
		s.Reset()
		out = s.List()
		return nil
	})
	return out, err
}

// Chains decomposes a stage into chains. A structural error is returned
// together with the chains that could be recovered.
func (w *Workspace) Chains(id stage.ID) ([]chain.Chain, error) {
	var out []chain.Chain
	err := w.read(id, func(_ stage.Definition, s *block.Store) error {
		var err error
		out, err = chain.Split(s.List())
		return err
	})
	return out, err
}

// Palette returns every block type of a stage with its capacity state.
func (w *Workspace) Palette(id stage.ID) ([]capacity.Entry, error) {
	var out []capacity.Entry
	err := w.read(id, func(def stage.Definition, s *block.Store) error {
		out = capacity.Palette(def.Registry, s.List())
		return nil
	})
	return out, err
}

// Inactive returns the type keys of a stage that are at capacity.
func (w *Workspace) Inactive(id stage.ID) ([]string, error) {
	var out []string
	err := w.read(id, func(def stage.Definition, s *block.Store) error {
		out = capacity.InactiveKeys(def.Registry, s.List())
		return nil
	})
	return out, err
}

// Validate runs the stage rule on demand. A failing rule is reported in
// the Result; errors are reserved for unknown stages and structural
// breaches.
func (w *Workspace) Validate(ctx context.Context, id stage.ID) (rule.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validate(ctx, id)
}

func (w *Workspace) validate(ctx context.Context, id stage.ID) (rule.Result, error) {
	ctx, op := observability.StartOperation(ctx, w.metrics, component, "validate",
		attribute.String(observability.AttrWorkspace, w.id),
		attribute.String(observability.AttrStage, string(id)))

	var res rule.Result
	def, s, err := w.definition(id)
	if err == nil {
		res, err = def.Validate(s.List())
	}
	if err == nil {
		op.SetAttributes(attribute.Bool("success", res.Success))
		if w.metrics != nil {
			w.metrics.RecordValidation(ctx, string(id), res.Success)
		}
	}
	fields := logger.Fields(logger.FieldStage, id)
	if err == nil && !res.Success {
		fields["rule"] = res.Rule
		fields["message"] = res.Message
	}
	w.finish(ctx, op, "validate", fields, err)
	return res, err
}

// Submit validates a stage and, when its rule passes, completes the
// stage's progress step.
func (w *Workspace) Submit(ctx context.Context, id stage.ID) (rule.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	res, err := w.validate(ctx, id)
	if err != nil || !res.Success {
		return res, err
	}
	def, _, _ := w.definition(id)
	return res, w.setStep(ctx, "complete_step", def.Step, true)
}

// Progress returns the state of every step.
func (w *Workspace) Progress() []progress.StepState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gate.States()
}

// StepState returns the state of one step.
func (w *Workspace) StepState(step progress.Step) (progress.StepState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, st := range w.gate.States() {
		if st.Step == step {
			return st, nil
		}
	}
	return progress.StepState{}, errors.UnknownStep(string(step))
}

// CompleteStep marks step completed. Completing twice is a no-op.
func (w *Workspace) CompleteStep(ctx context.Context, step progress.Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setStep(ctx, "complete_step", step, true)
}

// ResetStep marks step not completed. Later steps are left as they are.
func (w *Workspace) ResetStep(ctx context.Context, step progress.Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setStep(ctx, "reset_step", step, false)
}

func (w *Workspace) setStep(ctx context.Context, name string, step progress.Step, done bool) error {
	ctx, op := observability.StartOperation(ctx, w.metrics, component, name,
		attribute.String(observability.AttrWorkspace, w.id),
		attribute.String(observability.AttrStep, string(step)))

	var err error
	if done {
		err = w.gate.CompleteStep(step)
	} else {
		err = w.gate.ResetStep(step)
	}
	if err == nil {
		w.saveProgress(ctx)
	}
	w.finish(ctx, op, name, logger.Fields(logger.FieldStep, step), err)
	return err
}
