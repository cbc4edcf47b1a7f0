package stage

import (
	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/registry"
	"github.com/kbukum/blockflow/rule"
)

// ID names a canvas stage.
type ID string

const (
	Preprocessing ID = "preprocessing"
	Training      ID = "training"
	Performance   ID = "performance"
	Predicting    ID = "predicting"
)

// Definition bundles everything a stage needs: the block types it offers,
// the rule its chains must satisfy and the progress step it completes.
type Definition struct {
	ID       ID
	Title    string
	Registry *registry.Registry
	Rule     rule.Rule
	Step     progress.Step
}

// Validate decomposes instances and runs the stage rule. A structural error
// is returned as-is; a failing rule is a Result, not an error.
func (d Definition) Validate(instances []block.Instance) (rule.Result, error) {
	return rule.Evaluate(d.Rule, instances)
}

// predicting is the only stage whose step is named differently.
func progressStep(id ID) progress.Step {
	if id == Predicting {
		return progress.StepTesting
	}
	return progress.Step(id)
}

var definitions = []Definition{
	newPreprocessing(),
	newTraining(),
	newPerformance(),
	newPredicting(),
}

// All returns every stage in pipeline order.
func All() []Definition {
	return append([]Definition(nil), definitions...)
}

// IDs returns the stage ids in pipeline order.
func IDs() []ID {
	ids := make([]ID, len(definitions))
	for i, d := range definitions {
		ids[i] = d.ID
	}
	return ids
}

// Get returns the definition for id.
func Get(id ID) (Definition, error) {
	for _, d := range definitions {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, errors.UnknownStage(string(id))
}

// Parse resolves a stage name.
func Parse(name string) (Definition, error) {
	return Get(ID(name))
}

// ForStep returns the stage that completes step.
func ForStep(step progress.Step) (Definition, error) {
	for _, d := range definitions {
		if d.Step == step {
			return d, nil
		}
	}
	return Definition{}, errors.UnknownStep(string(step))
}
