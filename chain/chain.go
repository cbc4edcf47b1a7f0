package chain

import (
	"github.com/kbukum/blockflow/block"
)

// Chain is a maximal run of instances linked head to tail.
type Chain []block.Instance

// Head returns the first instance.
func (c Chain) Head() block.Instance { return c[0] }

// Tail returns the last instance.
func (c Chain) Tail() block.Instance { return c[len(c)-1] }

// IDs returns the instance ids in chain order.
func (c Chain) IDs() []string {
	ids := make([]string, len(c))
	for i, inst := range c {
		ids[i] = inst.ID
	}
	return ids
}

// TypeKeys returns the instance type keys in chain order.
func (c Chain) TypeKeys() []string {
	keys := make([]string, len(c))
	for i, inst := range c {
		keys[i] = inst.TypeKey
	}
	return keys
}

// Index returns the position of the first instance of typeKey, or -1.
func (c Chain) Index(typeKey string) int {
	for i, inst := range c {
		if inst.TypeKey == typeKey {
			return i
		}
	}
	return -1
}

// IDs returns the ids of every chain, chain by chain.
func IDs(chains []Chain) [][]string {
	out := make([][]string, len(chains))
	for i, c := range chains {
		out[i] = c.IDs()
	}
	return out
}
