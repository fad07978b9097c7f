package construction

import (
	"fmt"

	"github.com/viant/kgflow/model"
)

// Definition represents a set of problem graphs to build
type Definition struct {
	Problems []*ProblemDefinition `json:"problems" yaml:"problems"`
}

// ProblemDefinition represents a problem with its steps and relations.
// Problem ids are generated at build time, so steps and relations omit them.
type ProblemDefinition struct {
	Type        string            `json:"type" yaml:"type"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Active      *bool             `json:"active,omitempty" yaml:"active,omitempty"`
	FirstStep   int               `json:"firstStep" yaml:"firstStep"`
	Steps       []*model.Step     `json:"steps" yaml:"steps"`
	Relations   []*model.Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// IsActive returns true unless active was explicitly disabled
func (p *ProblemDefinition) IsActive() bool {
	return p.Active == nil || *p.Active
}

// Validate checks definition consistency
func (d *Definition) Validate() error {
	if d == nil || len(d.Problems) == 0 {
		return fmt.Errorf("definition has no problems")
	}
	for i, problem := range d.Problems {
		if err := problem.Validate(); err != nil {
			return fmt.Errorf("problems[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate checks problem definition consistency
func (p *ProblemDefinition) Validate() error {
	if p.Type == "" {
		return fmt.Errorf("problem type was empty")
	}
	steps := map[int]bool{}
	for _, step := range p.Steps {
		if steps[step.ID] {
			return fmt.Errorf("%v: duplicate step %d", p.Type, step.ID)
		}
		steps[step.ID] = true
		probe := *step
		probe.ProblemID = p.Type
		if err := probe.Validate(); err != nil {
			return err
		}
	}
	if !steps[p.FirstStep] {
		return fmt.Errorf("%v: first step %d is not defined", p.Type, p.FirstStep)
	}
	for _, relation := range p.Relations {
		if err := relation.Validate(); err != nil {
			return fmt.Errorf("%v: %w", p.Type, err)
		}
		if !relation.Type.IsNext() {
			return fmt.Errorf("%v: unexpected %s relation, use firstStep", p.Type, relation.Type)
		}
		if !steps[relation.FromStepID] || !steps[relation.ToStepID] {
			return fmt.Errorf("%v: relation %d->%d references undefined step", p.Type, relation.FromStepID, relation.ToStepID)
		}
	}
	return nil
}
