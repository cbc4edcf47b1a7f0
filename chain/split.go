package chain

import (
	"fmt"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/errors"
)

// IssueKind classifies a structural problem found while splitting.
type IssueKind string

const (
	IssueDuplicateID IssueKind = "duplicate_id"
	IssueDangling    IssueKind = "dangling_link"
	IssueAsymmetric  IssueKind = "asymmetric_link"
	IssueCycle       IssueKind = "cycle"
	IssueOrphan      IssueKind = "orphan_link"
)

// Issue is one structural problem attached to a split error.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	ID     string    `json:"id"`
	Detail string    `json:"detail"`
}

// Split partitions instances into chains. Heads are instances without a
// predecessor, taken in input order; each chain follows successor links to
// its tail. For a structurally valid set every instance appears in exactly
// one chain.
//
// Invalid sets yield a STRUCTURAL_ERROR alongside the chains that could be
// built. A traversal that would revisit an instance, step to a missing id,
// or step to an instance that does not point back is truncated there.
// A loop no head reaches is returned as its own chain, starting at its
// first instance in input order and truncated at the revisit. Other
// instances no head reaches are reported as orphans and left out.
func Split(instances []block.Instance) ([]Chain, error) {
	var issues []Issue
	byID := make(map[string]block.Instance, len(instances))
	first := make(map[string]int, len(instances))
	for i, inst := range instances {
		if _, dup := byID[inst.ID]; dup {
			issues = append(issues, Issue{IssueDuplicateID, inst.ID, "id appears more than once"})
			continue
		}
		byID[inst.ID] = inst
		first[inst.ID] = i
	}

	visited := make(map[string]bool, len(byID))
	var chains []Chain
	for i, head := range instances {
		if !head.IsHead() || visited[head.ID] || first[head.ID] != i {
			continue
		}
		c, is := follow(head, byID, visited)
		chains = append(chains, c)
		issues = append(issues, is...)
	}

	for _, inst := range instances {
		if visited[inst.ID] {
			continue
		}
		c, issue := unreached(inst, byID, visited)
		if c != nil {
			chains = append(chains, c)
		}
		issues = append(issues, issue)
	}

	if len(issues) == 0 {
		return chains, nil
	}
	return chains, errors.Structural("chain decomposition failed: %s %s", issues[0].Kind, issues[0].Detail).
		WithDetail("issues", issues)
}

// follow walks successor links from head, marking what it visits.
func follow(head block.Instance, byID map[string]block.Instance, visited map[string]bool) (Chain, []Issue) {
	c := Chain{head}
	visited[head.ID] = true
	seen := map[string]bool{head.ID: true}

	cur := head
	for cur.Successor != "" {
		next, ok := byID[cur.Successor]
		switch {
		case !ok:
			return c, []Issue{{IssueDangling, cur.ID, fmt.Sprintf("successor %s of %s does not exist", cur.Successor, cur.ID)}}
		case seen[next.ID]:
			return c, []Issue{{IssueCycle, next.ID, fmt.Sprintf("cycle detected at %s", next.ID)}}
		case next.Predecessor != cur.ID:
			return c, []Issue{{IssueAsymmetric, cur.ID, fmt.Sprintf("%s points to %s but %s points back to %q", cur.ID, next.ID, next.ID, next.Predecessor)}}
		case visited[next.ID]:
			return c, []Issue{{IssueOrphan, next.ID, fmt.Sprintf("%s is reachable from more than one chain", next.ID)}}
		}
		seen[next.ID] = true
		visited[next.ID] = true
		c = append(c, next)
		cur = next
	}
	return c, nil
}

// unreached classifies an instance no head reached. Following successors
// from it either returns to an instance already on the walk (a loop) or
// ends, in which case its predecessor link is broken. Everything on the
// walk is reported under this one issue; a loop's walk is also returned.
func unreached(inst block.Instance, byID map[string]block.Instance, visited map[string]bool) (Chain, Issue) {
	walk := Chain{inst}
	onWalk := map[string]bool{inst.ID: true}
	for cur := inst; cur.Successor != ""; {
		next, ok := byID[cur.Successor]
		if !ok || visited[next.ID] {
			break
		}
		if onWalk[next.ID] {
			markAll(visited, walk.IDs())
			return walk, Issue{IssueCycle, inst.ID, fmt.Sprintf("cycle detected through %s", inst.ID)}
		}
		onWalk[next.ID] = true
		walk = append(walk, next)
		cur = next
	}
	markAll(visited, walk.IDs())
	return nil, Issue{IssueOrphan, inst.ID, fmt.Sprintf("%s has predecessor %q but no chain reaches it", inst.ID, inst.Predecessor)}
}

func markAll(visited map[string]bool, ids []string) {
	for _, id := range ids {
		visited[id] = true
	}
}

// Issues extracts the issues carried by a Split error.
func Issues(err error) []Issue {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return nil
	}
	issues, _ := appErr.Details["issues"].([]Issue)
	return issues
}
