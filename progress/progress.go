package progress

import (
	"github.com/kbukum/blockflow/errors"
)

// Step is one phase of the pipeline progress gate.
type Step string

const (
	StepPreprocessing Step = "preprocessing"
	StepTraining      Step = "training"
	StepPerformance   Step = "performance"
	StepTesting       Step = "testing"
)

// DefaultSteps is the pipeline order.
var DefaultSteps = []Step{StepPreprocessing, StepTraining, StepPerformance, StepTesting}

// Status is the derived state of a step.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusAvailable Status = "available"
	StatusCompleted Status = "completed"
)

// StepState is a step with its completion flag and derived status.
type StepState struct {
	Step      Step   `json:"step" yaml:"step"`
	Completed bool   `json:"completed" yaml:"completed"`
	Available bool   `json:"available" yaml:"available"`
	Status    Status `json:"status" yaml:"status"`
}

// Gate tracks completion of strictly ordered steps. The first step is
// always available; any other step is available iff the step before it is
// completed. Resetting a step never touches later steps.
//
// Gate is not safe for concurrent use.
type Gate struct {
	steps     []Step
	index     map[Step]int
	completed map[Step]bool
}

// NewGate creates a gate over steps, or DefaultSteps when none are given.
func NewGate(steps ...Step) *Gate {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	g := &Gate{
		steps:     append([]Step(nil), steps...),
		index:     make(map[Step]int, len(steps)),
		completed: make(map[Step]bool, len(steps)),
	}
	for i, s := range g.steps {
		g.index[s] = i
	}
	return g
}

// Steps returns the ordered steps.
func (g *Gate) Steps() []Step { return append([]Step(nil), g.steps...) }

// Parse validates a step name against the gate.
func (g *Gate) Parse(name string) (Step, error) {
	s := Step(name)
	if _, ok := g.index[s]; !ok {
		return "", errors.UnknownStep(name)
	}
	return s, nil
}

// IsCompleted reports whether step is marked completed. Unknown steps are
// never completed.
func (g *Gate) IsCompleted(step Step) bool {
	return g.completed[step]
}

// IsAvailable reports whether step may be worked on.
func (g *Gate) IsAvailable(step Step) bool {
	i, ok := g.index[step]
	if !ok {
		return false
	}
	return i == 0 || g.completed[g.steps[i-1]]
}

// Status returns the derived status of step. A completed step reports
// completed even when an earlier reset has locked it again.
func (g *Gate) Status(step Step) Status {
	switch {
	case g.IsCompleted(step):
		return StatusCompleted
	case g.IsAvailable(step):
		return StatusAvailable
	default:
		return StatusLocked
	}
}

// CompleteStep marks step completed. Completing a completed step is a no-op.
func (g *Gate) CompleteStep(step Step) error {
	if _, ok := g.index[step]; !ok {
		return errors.UnknownStep(string(step))
	}
	g.completed[step] = true
	return nil
}

// ResetStep marks step not completed. Later steps keep their state.
func (g *Gate) ResetStep(step Step) error {
	if _, ok := g.index[step]; !ok {
		return errors.UnknownStep(string(step))
	}
	delete(g.completed, step)
	return nil
}

// States returns every step's state in order.
func (g *Gate) States() []StepState {
	out := make([]StepState, len(g.steps))
	for i, s := range g.steps {
		out[i] = StepState{
			Step:      s,
			Completed: g.IsCompleted(s),
			Available: g.IsAvailable(s),
			Status:    g.Status(s),
		}
	}
	return out
}

// Snapshot returns the completion map with an entry for every step.
func (g *Gate) Snapshot() map[Step]bool {
	snap := make(map[Step]bool, len(g.steps))
	for _, s := range g.steps {
		snap[s] = g.completed[s]
	}
	return snap
}

// Restore replaces the completion state. Unknown steps are rejected and
// leave the gate unchanged; steps absent from snap are not completed.
func (g *Gate) Restore(snap map[Step]bool) error {
	for s := range snap {
		if _, ok := g.index[s]; !ok {
			return errors.UnknownStep(string(s))
		}
	}
	g.completed = make(map[Step]bool, len(g.steps))
	for s, done := range snap {
		if done {
			g.completed[s] = true
		}
	}
	return nil
}
