package model

import (
	"fmt"
	"strings"
)

// EdgeType represents relation type
type EdgeType string

const (
	EdgeFirstStep   EdgeType = "FIRST_STEP"
	EdgeNextDefault EdgeType = "NEXT_DEFAULT"
	EdgeNextIf      EdgeType = "NEXT_IF"
)

// IsNext returns true for step to step edge
func (t EdgeType) IsNext() bool {
	return t == EdgeNextDefault || t == EdgeNextIf
}

// Relation represents graph edge definition
type Relation struct {
	ProblemID string   `json:"problemId" yaml:"problemId"`
	Type      EdgeType `json:"type" yaml:"type"`
	// FromStepID is ignored for FIRST_STEP
	FromStepID int    `json:"from,omitempty" yaml:"from,omitempty"`
	ToStepID   int    `json:"to" yaml:"to"`
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Validate checks relation static properties
func (r *Relation) Validate() error {
	switch r.Type {
	case EdgeFirstStep, EdgeNextDefault:
	case EdgeNextIf:
		if strings.TrimSpace(r.Condition) == "" {
			return fmt.Errorf("%s relation %d->%d: condition was empty", r.Type, r.FromStepID, r.ToStepID)
		}
	default:
		return fmt.Errorf("unsupported relation type: %q", r.Type)
	}
	return nil
}

// Candidate represents a next step candidate
type Candidate struct {
	Type      EdgeType `json:"type"`
	Condition string   `json:"condition,omitempty"`
	Step      *Step    `json:"step"`
}
