package registry

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kbukum/blockflow/errors"
)

type splitData struct {
	TestRatio float64 `json:"test_ratio"`
}

func testDescriptors() []Descriptor {
	return []Descriptor{
		{TypeKey: "start", ProducesOutput: true, MaxInstances: 1, Protected: true},
		{TypeKey: "normalize", Label: "Normalize", AcceptsInput: true, ProducesOutput: true, MaxInstances: Unlimited},
		{TypeKey: "split", AcceptsInput: true, ProducesOutput: true, MaxInstances: 1,
			NewData: func() any { return &splitData{TestRatio: 0.2} }},
		{TypeKey: "end", AcceptsInput: true, MaxInstances: 1, Protected: true},
	}
}

func TestNew(t *testing.T) {
	r, err := New("preprocessing", testDescriptors()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Stage() != "preprocessing" {
		t.Errorf("unexpected stage %q", r.Stage())
	}
	if r.Len() != 4 {
		t.Errorf("expected 4 types, got %d", r.Len())
	}
	if got := strings.Join(r.Keys(), ","); got != "start,normalize,split,end" {
		t.Errorf("expected declaration order, got %s", got)
	}
}

func TestNewRejectsBadDescriptors(t *testing.T) {
	tests := []struct {
		name  string
		descs []Descriptor
	}{
		{"empty key", []Descriptor{{TypeKey: "", MaxInstances: 1}}},
		{"duplicate key", []Descriptor{{TypeKey: "a", MaxInstances: 1}, {TypeKey: "a", MaxInstances: 1}}},
		{"zero max", []Descriptor{{TypeKey: "a"}}},
		{"negative max", []Descriptor{{TypeKey: "a", MaxInstances: -2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New("s", tc.descs...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGet(t *testing.T) {
	r := MustNew("preprocessing", testDescriptors()...)

	d, err := r.Get("normalize")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Label != "Normalize" || !d.AcceptsInput || !d.ProducesOutput {
		t.Errorf("unexpected descriptor %+v", d)
	}

	start, _ := r.Get("start")
	if start.Label != "start" {
		t.Errorf("expected label to default to key, got %q", start.Label)
	}

	_, err = r.Get("missing")
	if !errors.HasCode(err, errors.ErrCodeUnknownType) {
		t.Errorf("expected UNKNOWN_TYPE, got %v", err)
	}
	if r.Has("missing") || !r.Has("end") {
		t.Error("Has mismatch")
	}
}

func TestProtected(t *testing.T) {
	r := MustNew("preprocessing", testDescriptors()...)
	var keys []string
	for _, d := range r.Protected() {
		keys = append(keys, d.TypeKey)
	}
	if strings.Join(keys, ",") != "start,end" {
		t.Errorf("unexpected protected set %v", keys)
	}
}

func TestDefaultData(t *testing.T) {
	r := MustNew("training", testDescriptors()...)

	split, _ := r.Get("split")
	a := split.DefaultData().(*splitData)
	b := split.DefaultData().(*splitData)
	if a == b {
		t.Error("expected a fresh payload per call")
	}
	if a.TestRatio != 0.2 {
		t.Errorf("unexpected default %v", a.TestRatio)
	}

	norm, _ := r.Get("normalize")
	if norm.DefaultData() != nil {
		t.Error("expected nil payload without factory")
	}
}

func TestLimit(t *testing.T) {
	if Unlimited.Bounded() {
		t.Error("Unlimited should not be bounded")
	}
	if !Unlimited.Allows(1000) {
		t.Error("Unlimited should allow any count")
	}
	one := Limit(1)
	if !one.Allows(0) || one.Allows(1) {
		t.Error("limit 1 should allow exactly one instance")
	}
	if one.String() != "1" || Unlimited.String() != "unlimited" {
		t.Error("unexpected String()")
	}
}

func TestLimitJSON(t *testing.T) {
	data, err := json.Marshal([]Limit{1, Unlimited})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `[1,"unlimited"]` {
		t.Errorf("unexpected encoding %s", data)
	}

	var back []Limit
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back[0] != 1 || back[1] != Unlimited {
		t.Errorf("unexpected decode %v", back)
	}

	var bad Limit
	if err := json.Unmarshal([]byte(`"lots"`), &bad); err == nil {
		t.Error("expected error for unknown limit word")
	}
}

func TestTable(t *testing.T) {
	r := MustNew("preprocessing", testDescriptors()...)
	data, err := json.Marshal(r.Table())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"typeKey":"normalize"`,
		`"maxInstances":"unlimited"`,
		`"maxInstances":1`,
		`"protected":true`,
		`"acceptsInput":false`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}
