package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kgflow/model/state"
)

func TestRender(t *testing.T) {
	testCases := []struct {
		description string
		template    string
		vars        state.Context
		expect      string
		missing     string
	}{
		{
			description: "number substitution",
			template:    "您的余额为{balance}元",
			vars:        state.Context{"balance": state.Number(100)},
			expect:      "您的余额为100元",
		},
		{
			description: "multiple tokens",
			template:    "card {card_id} status {status}, active: {active}",
			vars:        state.Context{"card_id": state.String("6222"), "status": state.String("locked"), "active": state.Bool(false)},
			expect:      "card 6222 status locked, active: false",
		},
		{
			description: "sql condition",
			template:    "where customer_id = '{customer_id}'",
			vars:        state.Context{"customer_id": state.String("C001")},
			expect:      "where customer_id = 'C001'",
		},
		{
			description: "no tokens",
			template:    "plain text",
			expect:      "plain text",
		},
		{
			description: "unterminated brace kept literal",
			template:    "limit {amount",
			vars:        state.Context{"amount": state.Number(1)},
			expect:      "limit {amount",
		},
		{
			description: "empty braces kept literal",
			template:    "{} {x}",
			vars:        state.Context{"x": state.Number(2.5)},
			expect:      "{} 2.5",
		},
		{
			description: "missing variable",
			template:    "{missing}",
			vars:        state.Context{},
			missing:     "missing",
		},
		{
			description: "null is missing",
			template:    "value {status}",
			vars:        state.Context{"status": state.Null()},
			missing:     "status",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Render(testCase.template, testCase.vars)
			if testCase.missing != "" {
				assert.True(t, errors.Is(err, ErrMissingVariable))
				var missingErr *MissingVariableError
				if assert.True(t, errors.As(err, &missingErr)) {
					assert.Equal(t, testCase.missing, missingErr.Name)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestVariables(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Variables("x {a} y {b} {"))
	assert.Nil(t, Variables("none"))
}
