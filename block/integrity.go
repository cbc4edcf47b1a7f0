package block

import (
	"fmt"

	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/registry"
)

// CheckIntegrity verifies that instances satisfy every model invariant
// against reg: unique non-empty ids, known types, capacity, referential
// integrity, link symmetry and acyclicity. Violations are reported together
// as one STRUCTURAL_ERROR with an "issues" detail.
func CheckIntegrity(reg *registry.Registry, instances []Instance) error {
	var issues []string
	report := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	byID := make(map[string]Instance, len(instances))
	counts := make(map[string]int)
	for _, inst := range instances {
		if inst.ID == "" {
			report("instance of type %q has no id", inst.TypeKey)
			continue
		}
		if _, dup := byID[inst.ID]; dup {
			report("duplicate instance id %s", inst.ID)
			continue
		}
		byID[inst.ID] = inst
		if !reg.Has(inst.TypeKey) {
			report("instance %s has unknown type %q", inst.ID, inst.TypeKey)
			continue
		}
		counts[inst.TypeKey]++
	}

	for _, desc := range reg.All() {
		if n := counts[desc.TypeKey]; desc.MaxInstances.Bounded() && n > int(desc.MaxInstances) {
			report("type %s has %d instances, limit %d", desc.TypeKey, n, desc.MaxInstances)
		}
	}

	for _, inst := range instances {
		if inst.ID == "" {
			continue
		}
		if inst.Successor != "" {
			next, ok := byID[inst.Successor]
			switch {
			case inst.Successor == inst.ID:
				report("instance %s links to itself", inst.ID)
			case !ok:
				report("instance %s has dangling successor %s", inst.ID, inst.Successor)
			case next.Predecessor != inst.ID:
				report("link %s -> %s is not mirrored by its predecessor", inst.ID, inst.Successor)
			}
		}
		if inst.Predecessor != "" {
			prev, ok := byID[inst.Predecessor]
			switch {
			case inst.Predecessor == inst.ID:
				if inst.Successor != inst.ID {
					report("instance %s links to itself", inst.ID)
				}
			case !ok:
				report("instance %s has dangling predecessor %s", inst.ID, inst.Predecessor)
			case prev.Successor != inst.ID:
				report("link %s -> %s is not mirrored by its successor", inst.Predecessor, inst.ID)
			}
		}
	}

	// With symmetric links every instance reachable from a head is acyclic;
	// whatever is left over sits on a loop.
	if len(issues) == 0 {
		visited := make(map[string]bool, len(byID))
		for _, inst := range instances {
			if !inst.IsHead() {
				continue
			}
			for cur := inst.ID; cur != "" && !visited[cur]; cur = byID[cur].Successor {
				visited[cur] = true
			}
		}
		for _, inst := range instances {
			if !visited[inst.ID] {
				report("instance %s is part of a cycle", inst.ID)
			}
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return errors.Structural("%d invariant violation(s): %s", len(issues), issues[0]).
		WithDetail("issues", issues)
}
