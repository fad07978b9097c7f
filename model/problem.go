package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ProblemIDSeparator separates the problem type from its sequence number.
const ProblemIDSeparator = "-"

// Problem represents a classified issue type with one canonical solution graph
type Problem struct {
	// ID is generated per type as TYPE-NNN
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Active      bool   `json:"active" yaml:"active"`
}

// FormatProblemID returns TYPE-NNN identifier
func FormatProblemID(problemType string, seq int) string {
	return fmt.Sprintf("%s%s%03d", problemType, ProblemIDSeparator, seq)
}

// ProblemIDSequence returns numeric suffix of the problem ID.
func ProblemIDSequence(id string) (int, bool) {
	idx := strings.LastIndex(id, ProblemIDSeparator)
	suffix := id
	if idx >= 0 {
		suffix = id[idx+1:]
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return seq, true
}
