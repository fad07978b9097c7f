package model

import "fmt"

// Operation represents step operation tag
type Operation string

const (
	OperationQuery Operation = "query"
	OperationReply Operation = "reply"
)

// IsValid returns true for a known operation
func (o Operation) IsValid() bool {
	return o == OperationQuery || o == OperationReply
}

// StepKey identifies a step within a problem
type StepKey struct {
	ProblemID string `json:"problemId" yaml:"problemId"`
	StepID    int    `json:"stepId" yaml:"stepId"`
}

func (k StepKey) String() string {
	return fmt.Sprintf("%s#%d", k.ProblemID, k.StepID)
}

// Step represents a unit of work in a solution graph
type Step struct {
	ProblemID string    `json:"problemId" yaml:"problemId"`
	ID        int       `json:"id" yaml:"id"`
	Operation Operation `json:"operation" yaml:"operation"`

	// query step attributes
	System    string `json:"system,omitempty" yaml:"system,omitempty"`
	Table     string `json:"table,omitempty" yaml:"table,omitempty"`
	Field     string `json:"field,omitempty" yaml:"field,omitempty"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// reply step attribute
	Reply string `json:"reply,omitempty" yaml:"reply,omitempty"`
}

// Key returns step composite key
func (s *Step) Key() StepKey {
	return StepKey{ProblemID: s.ProblemID, StepID: s.ID}
}

// IsQuery returns true for query step
func (s *Step) IsQuery() bool { return s.Operation == OperationQuery }

// IsReply returns true for reply step
func (s *Step) IsReply() bool { return s.Operation == OperationReply }

// Validate checks static step properties
func (s *Step) Validate() error {
	if s.ProblemID == "" {
		return fmt.Errorf("step %d: problem id was empty", s.ID)
	}
	switch s.Operation {
	case OperationQuery:
		if s.Table == "" || s.Field == "" {
			return fmt.Errorf("step %v: query step requires table and field", s.Key())
		}
	case OperationReply:
	default:
		return fmt.Errorf("step %v: unsupported operation %q", s.Key(), s.Operation)
	}
	return nil
}
