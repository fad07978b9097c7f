package tracing

import (
	"context"
	"errors"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := path.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("kgflow", "0.0.1", fname))

	ctx, span := StartSpan(context.Background(), "engine.run", KindInternal)
	span.WithAttributes(map[string]string{"problem": "balance_inquiry-001"})
	_, child := StartSpan(ctx, "engine.step", KindInternal)
	EndSpan(child, errors.New("render failure"))
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "engine.step")
	assert.Contains(t, string(data), "parent.span_id")
}

func TestEndSpan_Nil(t *testing.T) {
	assert.NotPanics(t, func() {
		EndSpan(nil, nil)
		var span *Span
		span.SetStatusFromHTTPCode(500)
		span.WithAttributes(map[string]string{"k": "v"})
	})
}
