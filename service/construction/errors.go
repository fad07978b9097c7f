package construction

import "errors"

var (
	// ErrProblemNotFound is returned when a step or relation references an unknown problem
	ErrProblemNotFound = errors.New("construction: problem not found")

	// ErrStepNotFound is returned when a relation references an unknown step
	ErrStepNotFound = errors.New("construction: step not found")

	// ErrMissingCondition is returned for NEXT_IF relation without condition
	ErrMissingCondition = errors.New("construction: NEXT_IF relation requires condition")
)
