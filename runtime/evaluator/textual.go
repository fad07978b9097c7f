package evaluator

import (
	"context"
	"strconv"
	"strings"

	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model/state"
)

// operators in recognition priority order
var operators = []string{"==", "!=", ">", "<"}

// Textual evaluates the restricted condition language by textual substitution.
//
// Every context key is replaced wherever it occurs in the condition, including
// inside longer identifiers or string literals: a key that is a substring of
// another token corrupts the expression. This is a known defect of the
// language and is kept as is; a tokenizing evaluator can replace Textual
// through the Evaluator interface.
type Textual struct{}

// NewTextual creates textual evaluator
func NewTextual() *Textual {
	return &Textual{}
}

// Evaluate evaluates condition, parse failures are logged and yield false
func (e *Textual) Evaluate(ctx context.Context, condition string, vars state.Context) bool {
	if condition == "" {
		return false
	}
	expr := Substitute(condition, vars)
	expr = Normalize(expr)
	logger := logging.FromContext(ctx)
	logger.Debug("evaluating condition", "condition", condition, "expression", expr)

	var operator string
	for _, candidate := range operators {
		if strings.Contains(expr, candidate) {
			operator = candidate
			break
		}
	}
	if operator == "" {
		return false
	}
	left, right, _ := strings.Cut(expr, operator)
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	switch operator {
	case "==":
		return left == right
	case "!=":
		return left != right
	}
	leftNum, err := strconv.ParseFloat(left, 64)
	if err != nil {
		logger.Warn("condition evaluation failed", "expression", expr, "error", err)
		return false
	}
	rightNum, err := strconv.ParseFloat(right, 64)
	if err != nil {
		logger.Warn("condition evaluation failed", "expression", expr, "error", err)
		return false
	}
	if operator == ">" {
		return leftNum > rightNum
	}
	return leftNum < rightNum
}

// Substitute replaces every literal occurrence of each context key with its
// value: text quoted with single quotes, other kinds bare. Keys are applied in
// sorted order.
func Substitute(condition string, vars state.Context) string {
	for _, key := range vars.Keys() {
		if key == "" {
			continue
		}
		value := vars[key]
		replacement := value.String()
		if value.IsText() {
			replacement = "'" + replacement + "'"
		}
		condition = strings.ReplaceAll(condition, key, replacement)
	}
	return condition
}

// Normalize rewrites IS NULL / IS NOT NULL and strips the where keyword
func Normalize(expr string) string {
	expr = strings.ReplaceAll(expr, "IS NULL", "== null")
	expr = strings.ReplaceAll(expr, "IS NOT NULL", "!= null")
	return strings.ReplaceAll(expr, "where", "")
}
