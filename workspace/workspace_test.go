package workspace

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/resilience"
	"github.com/kbukum/blockflow/stage"
	"github.com/kbukum/blockflow/storage"
	"github.com/kbukum/blockflow/storage/memory"
)

// flakyStore wraps a memory store and fails the selected operations.
type flakyStore struct {
	*memory.Store
	mu       sync.Mutex
	failSave bool
	failLoad bool
	saves    int
}

func (f *flakyStore) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	f.saves++
	fail := f.failSave
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("disk full")
	}
	return f.Store.Save(ctx, key, data)
}

func (f *flakyStore) Load(ctx context.Context, key string) ([]byte, error) {
	if f.failLoad {
		return nil, fmt.Errorf("connection refused")
	}
	return f.Store.Load(ctx, key)
}

func (f *flakyStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func fastRetry() Option {
	return WithRetry(resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
}

func openTest(t *testing.T, store storage.Store) *Workspace {
	t.Helper()
	opts := []Option{fastRetry()}
	if store != nil {
		opts = append(opts, WithStorage(store, "test"))
	}
	w, err := Open(context.Background(), "default", opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return w
}

func endpoints(t *testing.T, w *Workspace, id stage.ID) (start, end block.Instance) {
	t.Helper()
	blocks, err := w.Blocks(id)
	if err != nil {
		t.Fatalf("Blocks: %v", err)
	}
	for _, b := range blocks {
		switch b.TypeKey {
		case stage.TypeStart:
			start = b
		case stage.TypeEnd:
			end = b
		}
	}
	if start.ID == "" || end.ID == "" {
		t.Fatalf("stage %s is missing its seeded endpoints: %+v", id, blocks)
	}
	return start, end
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if !errors.HasCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestOpenSeedsEveryStage(t *testing.T) {
	w := openTest(t, nil)
	for _, def := range w.Stages() {
		blocks, err := w.Blocks(def.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(blocks) != 2 {
			t.Errorf("%s: expected start and end, got %d blocks", def.ID, len(blocks))
		}
	}
	res, err := w.Validate(context.Background(), stage.Preprocessing)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.Message != "expected 1 chain, got 2" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestOpenRejectsBadID(t *testing.T) {
	_, err := Open(context.Background(), "../etc")
	assertCode(t, err, errors.ErrCodeInvalidInput)
}

func TestSubmitCompletesStep(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	start, end := endpoints(t, w, stage.Preprocessing)

	if err := w.Connect(ctx, stage.Preprocessing, start.ID, end.ID); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	res, err := w.Submit(ctx, stage.Preprocessing)
	if err != nil || !res.Success {
		t.Fatalf("Submit = %+v, %v", res, err)
	}
	st, _ := w.StepState(progress.StepTraining)
	if !st.Available {
		t.Error("training should unlock once preprocessing is submitted")
	}

	// a failing rule leaves the gate untouched
	res, err = w.Submit(ctx, stage.Training)
	if err != nil || res.Success {
		t.Fatalf("expected failing training rule, got %+v, %v", res, err)
	}
	if st, _ := w.StepState(progress.StepTraining); st.Completed {
		t.Error("training must not complete on a failing rule")
	}
}

func TestTrainingPipeline(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	start, end := endpoints(t, w, stage.Training)

	split, err := w.AddBlock(ctx, stage.Training, stage.TypeTrainTestSplit, block.Position{X: 200, Y: 240})
	if err != nil {
		t.Fatal(err)
	}
	model, err := w.AddBlock(ctx, stage.Training, stage.TypeRandomForest, block.Position{X: 400, Y: 240})
	if err != nil {
		t.Fatal(err)
	}
	for _, pair := range [][2]string{{start.ID, split.ID}, {split.ID, model.ID}, {model.ID, end.ID}} {
		if err := w.Connect(ctx, stage.Training, pair[0], pair[1]); err != nil {
			t.Fatalf("Connect(%s, %s): %v", pair[0], pair[1], err)
		}
	}

	chains, err := w.Chains(stage.Training)
	if err != nil || len(chains) != 1 || len(chains[0]) != 4 {
		t.Fatalf("Chains = %v, %v", chains, err)
	}
	res, err := w.Validate(ctx, stage.Training)
	if err != nil || !res.Success {
		t.Fatalf("Validate = %+v, %v", res, err)
	}

	inactive, _ := w.Inactive(stage.Training)
	for _, key := range []string{stage.TypeStart, stage.TypeEnd, stage.TypeTrainTestSplit, stage.TypeRandomForest} {
		if !strings.Contains(strings.Join(inactive, ","), key) {
			t.Errorf("%s should be inactive, got %v", key, inactive)
		}
	}
	_, err = w.AddBlock(ctx, stage.Training, stage.TypeRandomForest, block.Position{})
	assertCode(t, err, errors.ErrCodeCapacityExceeded)

	if err := w.RemoveBlock(ctx, stage.Training, split.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := w.Block(stage.Training, start.ID)
	if got.Successor != "" {
		t.Errorf("removing a block must clear its neighbour's link, got %q", got.Successor)
	}
	palette, _ := w.Palette(stage.Training)
	for _, e := range palette {
		if e.TypeKey == stage.TypeTrainTestSplit && (e.Inactive || e.Remaining != 1) {
			t.Errorf("split should be available again: %+v", e)
		}
	}
}

func TestSetBlockData(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	split, err := w.AddBlock(ctx, stage.Training, stage.TypeTrainTestSplit, block.Position{})
	if err != nil {
		t.Fatal(err)
	}

	inst, err := w.SetBlockData(ctx, stage.Training, split.ID, []byte(`{"test_ratio": 0.25}`))
	if err != nil {
		t.Fatalf("SetBlockData: %v", err)
	}
	if d := inst.Data.(*stage.SplitData); d.TestRatio != 0.25 || d.Seed != 42 {
		t.Errorf("unexpected data %+v", d)
	}

	_, err = w.SetBlockData(ctx, stage.Training, split.ID, []byte(`{"test_ratio": 2}`))
	assertCode(t, err, errors.ErrCodeInvalidInput)
	_, err = w.SetBlockData(ctx, stage.Training, split.ID, []byte(`{"ratio": 0.1}`))
	assertCode(t, err, errors.ErrCodeInvalidInput)

	cur, _ := w.Block(stage.Training, split.ID)
	if cur.Data.(*stage.SplitData).TestRatio != 0.25 {
		t.Error("rejected updates must leave the data unchanged")
	}
}

func TestUnknownStageAndStep(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	_, err := w.AddBlock(ctx, "deployment", stage.TypeStart, block.Position{})
	assertCode(t, err, errors.ErrCodeUnknownStage)
	_, err = w.Validate(ctx, "deployment")
	assertCode(t, err, errors.ErrCodeUnknownStage)
	assertCode(t, w.CompleteStep(ctx, "deploy"), errors.ErrCodeUnknownStep)
	_, err = w.StepState("deploy")
	assertCode(t, err, errors.ErrCodeUnknownStep)
}

func TestMoveRejectsNonFinite(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	start, _ := endpoints(t, w, stage.Preprocessing)
	if err := w.MoveBlock(ctx, stage.Preprocessing, start.ID, block.Position{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}
	err := w.MoveBlock(ctx, stage.Preprocessing, start.ID, block.Position{X: math.Inf(1)})
	assertCode(t, err, errors.ErrCodeInvalidInput)
}

func TestResetStepDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	_ = w.CompleteStep(ctx, progress.StepPreprocessing)
	_ = w.CompleteStep(ctx, progress.StepTraining)
	if err := w.ResetStep(ctx, progress.StepPreprocessing); err != nil {
		t.Fatal(err)
	}
	states := w.Progress()
	if states[0].Completed || !states[1].Completed || states[1].Available {
		t.Errorf("unexpected states %+v", states)
	}
}

func TestWriteThroughAndRehydrate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := openTest(t, store)
	start, end := endpoints(t, w, stage.Preprocessing)

	fill, err := w.AddBlock(ctx, stage.Preprocessing, stage.TypeFillMissing, block.Position{X: 3, Y: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.SetBlockData(ctx, stage.Preprocessing, fill.ID, []byte(`{"strategy":"median"}`)); err != nil {
		t.Fatal(err)
	}
	_ = w.Connect(ctx, stage.Preprocessing, start.ID, fill.ID)
	_ = w.Connect(ctx, stage.Preprocessing, fill.ID, end.ID)
	_ = w.CompleteStep(ctx, progress.StepPreprocessing)

	again := openTest(t, store)
	before, _ := w.Blocks(stage.Preprocessing)
	after, _ := again.Blocks(stage.Preprocessing)
	if len(before) != len(after) {
		t.Fatalf("rehydrated %d blocks, want %d", len(after), len(before))
	}
	for i := range before {
		b, a := before[i], after[i]
		if a.ID != b.ID || a.Predecessor != b.Predecessor || a.Successor != b.Successor || a.Position != b.Position {
			t.Errorf("block %d differs: %+v vs %+v", i, a, b)
		}
	}
	got, _ := again.Block(stage.Preprocessing, fill.ID)
	if d, ok := got.Data.(*stage.FillMissingData); !ok || d.Strategy != "median" {
		t.Errorf("payload not restored: %#v", got.Data)
	}
	if st, _ := again.StepState(progress.StepPreprocessing); !st.Completed {
		t.Error("progress not restored")
	}
	res, err := again.Validate(ctx, stage.Preprocessing)
	if err != nil || !res.Success {
		t.Errorf("Validate after rehydrate = %+v, %v", res, err)
	}
}

func TestUnreadableSnapshotsFallBackToDefaults(t *testing.T) {
	ctx := context.Background()
	keys := storage.KeysFor("test", "default")

	asymmetric := `[
		{"id":"a","type":"start","data":null,"position":{"x":0,"y":0},"input":null,"output":"b"},
		{"id":"b","type":"end","data":null,"position":{"x":0,"y":0},"input":null,"output":null}
	]`
	tests := map[string]string{
		"malformed":    `{not json`,
		"unknown type": `[{"id":"a","type":"rocket","data":null,"position":{"x":0,"y":0},"input":null,"output":null}]`,
		"missing id":   `[{"id":"","type":"start","data":null,"position":{"x":0,"y":0},"input":null,"output":null}]`,
		"asymmetric":   asymmetric,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			store := memory.New()
			_ = store.Save(ctx, keys.Stage(string(stage.Preprocessing)), []byte(raw))
			_ = store.Save(ctx, keys.Progress(), []byte(`{"deploy": true}`))

			w := openTest(t, store)
			blocks, _ := w.Blocks(stage.Preprocessing)
			if len(blocks) != 2 {
				t.Errorf("expected seeded defaults, got %+v", blocks)
			}
			if st, _ := w.StepState(progress.StepPreprocessing); st.Completed {
				t.Error("unreadable progress must fall back to a fresh gate")
			}
		})
	}
}

func TestLoadFailureIsReturned(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failLoad: true}
	_, err := Open(context.Background(), "default", WithStorage(store, "test"), fastRetry())
	assertCode(t, err, errors.ErrCodePersistence)
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	w := openTest(t, store)
	seeded := store.saveCount()
	store.failSave = true

	inst, err := w.AddBlock(ctx, stage.Preprocessing, stage.TypeNormalize, block.Position{})
	if err != nil {
		t.Fatalf("a failed write must not fail the mutation: %v", err)
	}
	if _, err := w.Block(stage.Preprocessing, inst.ID); err != nil {
		t.Errorf("block should still exist in memory: %v", err)
	}
	if got := store.saveCount() - seeded; got != 2 {
		t.Errorf("expected one retry, got %d attempts", got)
	}
}

func TestRejectedMutationIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	w := openTest(t, store)
	key := storage.KeysFor("test", "default").Stage("preprocessing")
	before, _ := store.Load(ctx, key)
	seeded := store.saveCount()

	_, err := w.AddBlock(ctx, stage.Preprocessing, stage.TypeStart, block.Position{})
	assertCode(t, err, errors.ErrCodeCapacityExceeded)
	start, _ := endpoints(t, w, stage.Preprocessing)
	assertCode(t, w.RemoveBlock(ctx, stage.Preprocessing, start.ID), errors.ErrCodeProtected)

	if got := store.saveCount() - seeded; got != 0 {
		t.Errorf("rejected operations wrote %d snapshots", got)
	}
	if after, _ := store.Load(ctx, key); string(after) != string(before) {
		t.Errorf("snapshot changed after rejected operations:\n%s\n%s", before, after)
	}
}

func TestSeededBlocksKeepIDsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	first, err := Open(ctx, "ws1", WithStorage(store, "ns"), fastRetry())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Open(ctx, "ws1", WithStorage(store, "ns"), fastRetry())
	if err != nil {
		t.Fatal(err)
	}
	for _, def := range stage.All() {
		a, _ := first.Blocks(def.ID)
		b, _ := second.Blocks(def.ID)
		if len(a) != len(b) {
			t.Fatalf("stage %s: %d seeded blocks, then %d", def.ID, len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Errorf("stage %s: seeded %s id changed across sessions: %s -> %s", def.ID, a[i].TypeKey, a[i].ID, b[i].ID)
			}
		}
	}

	start, _ := endpoints(t, second, stage.Preprocessing)
	assertCode(t, first.RemoveBlock(ctx, stage.Preprocessing, start.ID), errors.ErrCodeProtected)
}

func TestDefaultsReplaceUnreadableSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	key := storage.KeysFor("test", "default").Stage(string(stage.Training))
	_ = store.Save(ctx, key, []byte(`{not json`))

	w := openTest(t, store)
	raw, err := store.Load(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := DecodeStage(mustStage(t, stage.Training).Registry, raw)
	if err != nil {
		t.Fatalf("defaults were not written back: %v", err)
	}
	blocks, _ := w.Blocks(stage.Training)
	if len(restored) != len(blocks) || restored[0].ID != blocks[0].ID {
		t.Errorf("stored %+v, in memory %+v", restored, blocks)
	}
}

func mustStage(t *testing.T, id stage.ID) stage.Definition {
	t.Helper()
	def, err := stage.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func TestResetStage(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)
	_, _ = w.AddBlock(ctx, stage.Performance, stage.TypeAccuracy, block.Position{})
	_ = w.CompleteStep(ctx, progress.StepPerformance)

	blocks, err := w.ResetStage(ctx, stage.Performance)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Errorf("expected only seeded blocks, got %d", len(blocks))
	}
	if st, _ := w.StepState(progress.StepPerformance); !st.Completed {
		t.Error("resetting a canvas must not touch progress")
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, memory.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := w.AddBlock(ctx, stage.Preprocessing, stage.TypeNormalize, block.Position{}); err != nil {
				t.Error(err)
			}
			_, _ = w.Palette(stage.Preprocessing)
		}()
	}
	wg.Wait()
	blocks, _ := w.Blocks(stage.Preprocessing)
	if len(blocks) != 22 {
		t.Errorf("expected 22 blocks, got %d", len(blocks))
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := NewManager(WithStorage(store, "team"), fastRetry())

	a, err := m.Get(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := m.Get(ctx, "alpha")
	if a != again {
		t.Error("Get must return the same workspace")
	}
	b, _ := m.Get(ctx, "beta")

	_ = a.CompleteStep(ctx, progress.StepPreprocessing)
	if st, _ := b.StepState(progress.StepPreprocessing); st.Completed {
		t.Error("workspaces must not share progress")
	}
	if _, err := store.Load(ctx, "team:alpha:progress"); err != nil {
		t.Errorf("expected namespaced progress key: %v", err)
	}
	if got := m.Open(); len(got) != 2 || got[0] != "alpha" {
		t.Errorf("Open() = %v", got)
	}

	m.Evict("alpha")
	reopened, _ := m.Get(ctx, "alpha")
	if reopened == a {
		t.Error("evicted workspace should be reopened")
	}
	if st, _ := reopened.StepState(progress.StepPreprocessing); !st.Completed {
		t.Error("reopened workspace should rehydrate progress")
	}
	if h := m.CheckHealth(ctx); h.Status != "up" {
		t.Errorf("unexpected health %+v", h)
	}
}
