package rule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/chain"
)

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// RequireChainCount passes iff there are exactly n chains.
func RequireChainCount(n int) Rule {
	return Named("chain_count", func(chains []chain.Chain, _ []block.Instance) Result {
		if len(chains) == n {
			return Pass()
		}
		return Fail("expected %d %s, got %d", n, plural(n, "chain"), len(chains))
	})
}

// RequireEndpointTypes passes iff every chain starts with startType and
// ends with endType. The first offending chain is named by index and head.
func RequireEndpointTypes(startType, endType string) Rule {
	return Named("endpoint_types", func(chains []chain.Chain, _ []block.Instance) Result {
		for i, c := range chains {
			if len(c) == 0 {
				continue
			}
			if head := c.Head(); head.TypeKey != startType {
				return Fail("chain %d (head %s) must start with %s, starts with %s", i+1, head.ID, startType, head.TypeKey)
			}
			if tail := c.Tail(); tail.TypeKey != endType {
				return Fail("chain %d (head %s) must end with %s, ends with %s", i+1, c.Head().ID, endType, tail.TypeKey)
			}
		}
		return Pass()
	})
}

// RequireNonEmpty passes iff at least one chain exists.
func RequireNonEmpty() Rule {
	return Named("non_empty", func(chains []chain.Chain, _ []block.Instance) Result {
		if len(chains) == 0 {
			return Fail("the canvas is empty")
		}
		return Pass()
	})
}

// Predicate builds a custom rule that fails with message when ok is false.
func Predicate(name, message string, ok func(chains []chain.Chain) bool) Rule {
	return Named(name, func(chains []chain.Chain, _ []block.Instance) Result {
		if ok(chains) {
			return Pass()
		}
		return Fail("%s", message)
	})
}

func countTypes(chains []chain.Chain, typeKeys []string) int {
	n := 0
	for _, c := range chains {
		for _, inst := range c {
			if slices.Contains(typeKeys, inst.TypeKey) {
				n++
			}
		}
	}
	return n
}

// RequireExactly passes iff the chains hold exactly n blocks whose type is
// one of typeKeys. label names the group in the failure message.
func RequireExactly(n int, label string, typeKeys ...string) Rule {
	return Named("exactly_"+label, func(chains []chain.Chain, _ []block.Instance) Result {
		if got := countTypes(chains, typeKeys); got != n {
			return Fail("expected exactly %d %s %s, got %d", n, label, plural(n, "block"), got)
		}
		return Pass()
	})
}

// RequireAtLeast passes iff the chains hold at least n blocks whose type is
// one of typeKeys.
func RequireAtLeast(n int, label string, typeKeys ...string) Rule {
	return Named("at_least_"+label, func(chains []chain.Chain, _ []block.Instance) Result {
		if got := countTypes(chains, typeKeys); got < n {
			return Fail("expected at least %d %s %s, got %d (one of: %s)", n, label, plural(n, "block"), got, strings.Join(typeKeys, ", "))
		}
		return Pass()
	})
}

// RequireOrder passes iff, in every chain, each block whose type is one of
// afterTypes has a block of beforeType somewhere upstream.
func RequireOrder(beforeType string, afterTypes ...string) Rule {
	return Named(fmt.Sprintf("order_%s", beforeType), func(chains []chain.Chain, _ []block.Instance) Result {
		for _, c := range chains {
			first := c.Index(beforeType)
			for i, inst := range c {
				if !slices.Contains(afterTypes, inst.TypeKey) {
					continue
				}
				if first < 0 || first > i {
					return Fail("%s must come after %s", inst.TypeKey, beforeType)
				}
			}
		}
		return Pass()
	})
}
