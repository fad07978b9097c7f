package engine

import (
	"fmt"

	"github.com/viant/kgflow/model"
	"github.com/viant/kgflow/model/state"
)

// Status represents terminal traversal state
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
)

// Reason describes why traversal was interrupted
type Reason string

const (
	ReasonNotFound             Reason = "not found"
	ReasonRenderFailure        Reason = "render failure"
	ReasonEmptyReply           Reason = "empty reply"
	ReasonUnsupportedOperation Reason = "unsupported operation"
	ReasonNoNextStep           Reason = "no next step"
	ReasonNoSatisfiedBranch    Reason = "no satisfied branch"
	ReasonStepLimitExceeded    Reason = "step limit exceeded"
	ReasonStorageFailure       Reason = "storage failure"
)

// Outcome represents traversal result. Message is always caller safe: the
// rendered reply when completed, a polite diagnostic otherwise.
type Outcome struct {
	Status  Status          `json:"status"`
	Reason  Reason          `json:"reason,omitempty"`
	Message string          `json:"message"`
	Context state.Context   `json:"context"`
	Values  state.Context   `json:"values,omitempty"`
	Path    []model.StepKey `json:"path,omitempty"`
	Err     error           `json:"-"`
}

// Completed returns true when a reply was rendered
func (o *Outcome) Completed() bool {
	return o.Status == StatusCompleted
}

// Messages represents caller facing messages
type Messages struct {
	NoSolution  string `json:"noSolution,omitempty" yaml:"noSolution,omitempty"`
	Interrupted string `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	// MissingParameter is a format with a single %s verb for the parameter name
	MissingParameter string `json:"missingParameter,omitempty" yaml:"missingParameter,omitempty"`
	EmptyReply       string `json:"emptyReply,omitempty" yaml:"emptyReply,omitempty"`
	Aborted          string `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	SystemError      string `json:"systemError,omitempty" yaml:"systemError,omitempty"`
}

// DefaultMessages returns default English messages
func DefaultMessages() Messages {
	return Messages{
		NoSolution:       "Sorry, no solution was found.",
		Interrupted:      "Sorry, processing was interrupted.",
		MissingParameter: "Reply generation failed, missing parameter: %s",
		EmptyReply:       "Sorry, unable to generate a reply.",
		Aborted:          "Sorry, processing terminated abnormally.",
		SystemError:      "Sorry, a system error occurred.",
	}
}

// Init fills empty messages with defaults
func (m *Messages) Init() {
	defaults := DefaultMessages()
	if m.NoSolution == "" {
		m.NoSolution = defaults.NoSolution
	}
	if m.Interrupted == "" {
		m.Interrupted = defaults.Interrupted
	}
	if m.MissingParameter == "" {
		m.MissingParameter = defaults.MissingParameter
	}
	if m.EmptyReply == "" {
		m.EmptyReply = defaults.EmptyReply
	}
	if m.Aborted == "" {
		m.Aborted = defaults.Aborted
	}
	if m.SystemError == "" {
		m.SystemError = defaults.SystemError
	}
}

func (m *Messages) forReason(reason Reason, detail string) string {
	switch reason {
	case ReasonNotFound:
		return m.NoSolution
	case ReasonRenderFailure:
		if detail == "" {
			return m.Interrupted
		}
		return fmt.Sprintf(m.MissingParameter, detail)
	case ReasonEmptyReply:
		return m.EmptyReply
	case ReasonStepLimitExceeded:
		return m.Aborted
	case ReasonStorageFailure:
		return m.SystemError
	}
	return m.Interrupted
}
