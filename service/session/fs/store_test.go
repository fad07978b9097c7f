package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kgflow/model/state"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	values, err := store.Get(ctx, "user/1")
	require.NoError(t, err)
	assert.Empty(t, values)

	expect := state.Context{
		"card_id":  state.String("6222001"),
		"amount":   state.Number(2000),
		"verified": state.Bool(true),
		"status":   state.Null(),
	}
	require.NoError(t, store.Put(ctx, "user/1", expect))
	values, err = store.Get(ctx, "user/1")
	require.NoError(t, err)
	assert.Equal(t, expect, values)

	now = now.Add(2 * time.Hour)
	values, err = store.Get(ctx, "user/1")
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, store.Put(ctx, "user/1", expect))
	require.NoError(t, store.Clear(ctx, "user/1"))
	values, err = store.Get(ctx, "user/1")
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.NoError(t, store.Clear(ctx, "user/1"))
}
