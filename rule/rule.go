package rule

import (
	"fmt"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/chain"
	"github.com/kbukum/blockflow/errors"
)

// Result is the outcome of a rule check. A failed result carries a
// user-facing message and the name of the rule that produced it.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

// Report is the wire form of a Result: {"success": true} on success,
// {"error": "VALIDATION_FAILED", "message": ...} otherwise.
type Report struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Report renders the result for clients.
func (r Result) Report() Report {
	if r.Success {
		return Report{Success: true}
	}
	return Report{Error: string(errors.ErrCodeValidationFailed), Message: r.Message}
}

// Pass returns a successful result.
func Pass() Result { return Result{Success: true} }

// Fail returns a failed result with a formatted message.
func Fail(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Rule is a structural check over a stage's decomposed chains.
type Rule interface {
	Name() string
	Check(chains []chain.Chain, instances []block.Instance) Result
}

// Func adapts a plain function to a check body.
type Func func(chains []chain.Chain, instances []block.Instance) Result

type named struct {
	name string
	fn   Func
}

func (r named) Name() string { return r.name }

func (r named) Check(chains []chain.Chain, instances []block.Instance) Result {
	res := r.fn(chains, instances)
	if !res.Success && res.Rule == "" {
		res.Rule = r.name
	}
	return res
}

// Named wraps fn as a Rule.
func Named(name string, fn Func) Rule {
	return named{name: name, fn: fn}
}

// Sequence runs rules in order and returns the first failure, or success
// if every rule passes. Rules after a failure are not evaluated.
type Sequence []Rule

// Name returns "sequence".
func (s Sequence) Name() string { return "sequence" }

// Check evaluates the rules in order.
func (s Sequence) Check(chains []chain.Chain, instances []block.Instance) Result {
	for _, r := range s {
		res := r.Check(chains, instances)
		if !res.Success {
			if res.Rule == "" {
				res.Rule = r.Name()
			}
			return res
		}
	}
	return Pass()
}

// Then composes rules left to right with short-circuit on failure.
// Nested sequences are flattened.
func Then(first Rule, next ...Rule) Rule {
	var seq Sequence
	for _, r := range append([]Rule{first}, next...) {
		if inner, ok := r.(Sequence); ok {
			seq = append(seq, inner...)
			continue
		}
		seq = append(seq, r)
	}
	return seq
}

// Evaluate splits instances into chains and checks r against them. A
// structural problem in the instance set is returned as an error rather
// than a failed result.
func Evaluate(r Rule, instances []block.Instance) (Result, error) {
	chains, err := chain.Split(instances)
	if err != nil {
		return Result{}, err
	}
	return r.Check(chains, instances), nil
}
