package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	first, second := New(), New()
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)

	defer func(prev func() string) { NewFunc = prev }(NewFunc)
	NewFunc = func() string { return "turn-1" }
	assert.Equal(t, "turn-1", New())
}
