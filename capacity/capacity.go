package capacity

import (
	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/registry"
)

// Counts tallies instances per type key.
func Counts(instances []block.Instance) map[string]int {
	counts := make(map[string]int)
	for _, inst := range instances {
		counts[inst.TypeKey]++
	}
	return counts
}

// Inactive returns the set of bounded type keys whose instance count has
// reached the limit. It is a pure function of its inputs.
func Inactive(reg *registry.Registry, instances []block.Instance) map[string]bool {
	counts := Counts(instances)
	inactive := make(map[string]bool)
	for _, d := range reg.All() {
		if d.MaxInstances.Bounded() && counts[d.TypeKey] >= int(d.MaxInstances) {
			inactive[d.TypeKey] = true
		}
	}
	return inactive
}

// InactiveKeys returns Inactive as a slice in registry declaration order.
func InactiveKeys(reg *registry.Registry, instances []block.Instance) []string {
	inactive := Inactive(reg, instances)
	keys := make([]string, 0, len(inactive))
	for _, k := range reg.Keys() {
		if inactive[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Remaining returns how many more instances of typeKey may be placed, or
// -1 when the type is unlimited.
func Remaining(reg *registry.Registry, instances []block.Instance, typeKey string) (int, error) {
	d, err := reg.Get(typeKey)
	if err != nil {
		return 0, err
	}
	return remaining(d, Counts(instances)[typeKey]), nil
}

func remaining(d registry.Descriptor, count int) int {
	if !d.MaxInstances.Bounded() {
		return -1
	}
	return max(int(d.MaxInstances)-count, 0)
}

// Entry is one palette row: a descriptor plus its live availability.
type Entry struct {
	registry.TableRow `yaml:",inline"`

	Count     int  `json:"count" yaml:"count"`
	Remaining int  `json:"remaining" yaml:"remaining"` // -1 when unlimited
	Inactive  bool `json:"inactive" yaml:"inactive"`
}

// Palette returns one entry per registered type in declaration order.
func Palette(reg *registry.Registry, instances []block.Instance) []Entry {
	counts := Counts(instances)
	entries := make([]Entry, 0, reg.Len())
	for _, d := range reg.All() {
		rem := remaining(d, counts[d.TypeKey])
		entries = append(entries, Entry{
			TableRow:  d.Row(),
			Count:     counts[d.TypeKey],
			Remaining: rem,
			Inactive:  rem == 0,
		})
	}
	return entries
}
