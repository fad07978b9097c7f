// Package template substitutes {name} placeholders with context values.
package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/kgflow/model/state"
	"github.com/viant/parsly"
)

// ErrMissingVariable is matched by every MissingVariableError
var ErrMissingVariable = errors.New("missing variable")

// MissingVariableError reports a placeholder without a context value
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variable: %s", e.Name)
}

func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}

// Render replaces every {name} token with the natural textual form of the
// named context value. An absent or null value fails the whole rendering.
func Render(template string, vars state.Context) (string, error) {
	if template == "" {
		return "", nil
	}
	cursor := parsly.NewCursor("", []byte(template), 0)
	var builder strings.Builder
	builder.Grow(len(template))
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(placeholderToken, textToken)
		switch matched.Code {
		case placeholderCode:
			token := matched.Text(cursor)
			name := token[1 : len(token)-1]
			value, ok := vars.Lookup(name)
			if !ok || value.IsNull() {
				return "", &MissingVariableError{Name: name}
			}
			builder.WriteString(value.String())
		case textCode:
			builder.WriteString(matched.Text(cursor))
		default:
			builder.WriteString(template[cursor.Pos:])
			cursor.Pos = cursor.InputSize
		}
	}
	return builder.String(), nil
}

// Variables returns placeholder names in order of appearance
func Variables(template string) []string {
	var names []string
	cursor := parsly.NewCursor("", []byte(template), 0)
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(placeholderToken, textToken)
		switch matched.Code {
		case placeholderCode:
			token := matched.Text(cursor)
			names = append(names, token[1:len(token)-1])
		case textCode:
		default:
			return names
		}
	}
	return names
}
