package registry

import (
	"fmt"

	"github.com/kbukum/blockflow/errors"
)

// Registry holds the block types available in one stage. It is immutable
// after New and safe for concurrent reads.
type Registry struct {
	stage string
	order []string
	byKey map[string]Descriptor
}

// New builds a stage registry. Keys must be unique and non-empty, and
// MaxInstances must be Unlimited or at least 1.
func New(stage string, descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		stage: stage,
		order: make([]string, 0, len(descs)),
		byKey: make(map[string]Descriptor, len(descs)),
	}
	for _, d := range descs {
		if d.TypeKey == "" {
			return nil, fmt.Errorf("registry %s: empty type key", stage)
		}
		if _, dup := r.byKey[d.TypeKey]; dup {
			return nil, fmt.Errorf("registry %s: duplicate type key %q", stage, d.TypeKey)
		}
		if d.MaxInstances != Unlimited && d.MaxInstances < 1 {
			return nil, fmt.Errorf("registry %s: type %q has invalid max instances %d", stage, d.TypeKey, d.MaxInstances)
		}
		if d.Label == "" {
			d.Label = d.TypeKey
		}
		r.order = append(r.order, d.TypeKey)
		r.byKey[d.TypeKey] = d
	}
	return r, nil
}

// MustNew is New for package-level catalogs; it panics on error.
func MustNew(stage string, descs ...Descriptor) *Registry {
	r, err := New(stage, descs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Stage returns the stage this registry belongs to.
func (r *Registry) Stage() string { return r.stage }

// Get returns the descriptor for typeKey or an UNKNOWN_TYPE error.
func (r *Registry) Get(typeKey string) (Descriptor, error) {
	d, ok := r.byKey[typeKey]
	if !ok {
		return Descriptor{}, errors.UnknownType(r.stage, typeKey)
	}
	return d, nil
}

// Has reports whether typeKey is registered.
func (r *Registry) Has(typeKey string) bool {
	_, ok := r.byKey[typeKey]
	return ok
}

// All returns the descriptors in declaration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.order))
	for i, k := range r.order {
		out[i] = r.byKey[k]
	}
	return out
}

// Keys returns the type keys in declaration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Protected returns the protected descriptors in declaration order.
func (r *Registry) Protected() []Descriptor {
	var out []Descriptor
	for _, k := range r.order {
		if d := r.byKey[k]; d.Protected {
			out = append(out, d)
		}
	}
	return out
}

// Table returns the descriptor table in declaration order.
func (r *Registry) Table() []TableRow {
	rows := make([]TableRow, len(r.order))
	for i, k := range r.order {
		rows[i] = r.byKey[k].Row()
	}
	return rows
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.order) }
