package evaluator

import (
	"context"

	"github.com/dop251/goja"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model/state"
)

// Script evaluates a condition as a JavaScript expression with context
// variables bound as globals, e.g. `amount > 1000 && channel == "mobile"`.
type Script struct{}

// NewScript creates script evaluator
func NewScript() *Script {
	return &Script{}
}

// Evaluate runs the condition in a fresh VM, errors yield false
func (e *Script) Evaluate(ctx context.Context, condition string, vars state.Context) bool {
	if condition == "" {
		return false
	}
	vm := goja.New()
	for _, key := range vars.Keys() {
		if err := vm.Set(key, vars[key].Interface()); err != nil {
			logging.FromContext(ctx).Warn("failed to bind condition variable", "name", key, "error", err)
			return false
		}
	}
	result, err := vm.RunString(condition)
	if err != nil {
		logging.FromContext(ctx).Warn("condition evaluation failed", "condition", condition, "error", err)
		return false
	}
	return result.ToBoolean()
}
