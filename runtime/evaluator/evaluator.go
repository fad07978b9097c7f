// Package evaluator decides NEXT_IF branch conditions against a conversation
// context. Implementations never fail: any problem evaluates to false.
package evaluator

import (
	"context"
	"fmt"

	"github.com/viant/kgflow/model/state"
)

const (
	// KindTextual selects the textual substitution evaluator
	KindTextual = "textual"
	// KindScript selects the JavaScript evaluator
	KindScript = "script"
)

// Evaluator evaluates a condition against context variables
type Evaluator interface {
	Evaluate(ctx context.Context, condition string, vars state.Context) bool
}

// Func adapts a function to Evaluator
type Func func(ctx context.Context, condition string, vars state.Context) bool

func (f Func) Evaluate(ctx context.Context, condition string, vars state.Context) bool {
	return f(ctx, condition, vars)
}

// New returns evaluator for the supplied kind, empty kind means textual
func New(kind string) (Evaluator, error) {
	switch kind {
	case "", KindTextual:
		return NewTextual(), nil
	case KindScript:
		return NewScript(), nil
	}
	return nil, fmt.Errorf("unsupported evaluator: %q", kind)
}
