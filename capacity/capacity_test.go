package capacity

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/registry"
)

func testRegistry() *registry.Registry {
	return registry.MustNew("training",
		registry.Descriptor{TypeKey: "start", ProducesOutput: true, MaxInstances: 1, Protected: true},
		registry.Descriptor{TypeKey: "split", AcceptsInput: true, ProducesOutput: true, MaxInstances: 1},
		registry.Descriptor{TypeKey: "metric", AcceptsInput: true, ProducesOutput: true, MaxInstances: 3},
		registry.Descriptor{TypeKey: "step", AcceptsInput: true, ProducesOutput: true, MaxInstances: registry.Unlimited},
		registry.Descriptor{TypeKey: "end", AcceptsInput: true, MaxInstances: 1, Protected: true},
	)
}

func instances(keys ...string) []block.Instance {
	out := make([]block.Instance, len(keys))
	for i, k := range keys {
		out[i] = block.Instance{ID: fmt.Sprintf("i%d", i), TypeKey: k}
	}
	return out
}

func TestInactiveAtLimit(t *testing.T) {
	reg := testRegistry()

	got := Inactive(reg, instances("start"))
	if !got["start"] {
		t.Errorf("expected start inactive, got %v", got)
	}
	if len(got) != 1 {
		t.Errorf("expected only start inactive, got %v", got)
	}

	// the store refuses a second start once the gate reports it
	store := block.NewStore(reg)
	if _, err := store.Add("start", block.Position{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !Inactive(reg, store.List())["start"] {
		t.Error("expected start inactive after placing one")
	}
	if _, err := store.Add("start", block.Position{}); !errors.HasCode(err, errors.ErrCodeCapacityExceeded) {
		t.Errorf("expected CAPACITY_EXCEEDED, got %v", err)
	}
}

func TestInactiveIgnoresUnlimitedAndUnknown(t *testing.T) {
	reg := testRegistry()
	set := instances("step", "step", "step", "step", "ghost", "metric", "metric")
	if got := Inactive(reg, set); len(got) != 0 {
		t.Errorf("expected nothing inactive, got %v", got)
	}
}

func TestInactiveKeysOrder(t *testing.T) {
	reg := testRegistry()
	got := InactiveKeys(reg, instances("end", "split", "start"))
	if !reflect.DeepEqual(got, []string{"start", "split", "end"}) {
		t.Errorf("expected registry order, got %v", got)
	}
}

func TestRemaining(t *testing.T) {
	reg := testRegistry()
	set := instances("metric", "metric")

	if n, _ := Remaining(reg, set, "metric"); n != 1 {
		t.Errorf("expected 1 metric remaining, got %d", n)
	}
	if n, _ := Remaining(reg, set, "step"); n != -1 {
		t.Errorf("expected unlimited, got %d", n)
	}
	if n, _ := Remaining(reg, instances("split", "split"), "split"); n != 0 {
		t.Errorf("over-full type should clamp to 0, got %d", n)
	}
	if _, err := Remaining(reg, set, "ghost"); !errors.HasCode(err, errors.ErrCodeUnknownType) {
		t.Errorf("expected UNKNOWN_TYPE, got %v", err)
	}
}

func TestPalette(t *testing.T) {
	reg := testRegistry()
	entries := Palette(reg, instances("start", "metric", "step"))
	if len(entries) != reg.Len() {
		t.Fatalf("expected %d entries, got %d", reg.Len(), len(entries))
	}

	byKey := map[string]Entry{}
	for _, e := range entries {
		byKey[e.TypeKey] = e
	}
	if e := byKey["start"]; !e.Inactive || e.Remaining != 0 || e.Count != 1 {
		t.Errorf("unexpected start entry %+v", e)
	}
	if e := byKey["metric"]; e.Inactive || e.Remaining != 2 {
		t.Errorf("unexpected metric entry %+v", e)
	}
	if e := byKey["step"]; e.Inactive || e.Remaining != -1 {
		t.Errorf("unexpected step entry %+v", e)
	}
	if entries[0].TypeKey != "start" {
		t.Error("palette must follow declaration order")
	}
}

func TestInactiveIdempotent(t *testing.T) {
	reg := testRegistry()
	keys := reg.Keys()
	rapid.Check(t, func(rt *rapid.T) {
		picks := rapid.SliceOfN(rapid.SampledFrom(append(keys, "ghost")), 0, 12).Draw(rt, "types")
		set := instances(picks...)

		first := Inactive(reg, set)
		second := Inactive(reg, set)
		if !reflect.DeepEqual(first, second) {
			rt.Fatalf("Inactive not idempotent: %v vs %v", first, second)
		}

		counts := Counts(set)
		for _, d := range reg.All() {
			want := d.MaxInstances.Bounded() && counts[d.TypeKey] >= int(d.MaxInstances)
			if first[d.TypeKey] != want {
				rt.Fatalf("type %s: inactive=%v want %v (count %d)", d.TypeKey, first[d.TypeKey], want, counts[d.TypeKey])
			}
		}
	})
}
