// Package kvtest holds the behaviour every kv.Medium must share.
package kvtest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thali/internal/kv"
)

// Run exercises m. The medium must start empty.
func Run(t *testing.T, m kv.Medium) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := m.Get(ctx, "missing")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("set if absent then get", func(t *testing.T) {
		ok, err := m.SetIfAbsent(ctx, "p_a", []byte("one"))
		require.NoError(t, err)
		require.True(t, ok)

		v, err := m.Get(ctx, "p_a")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), v)
	})

	t.Run("second set is refused and keeps first value", func(t *testing.T) {
		ok, err := m.SetIfAbsent(ctx, "p_a", []byte("two"))
		require.NoError(t, err)
		assert.False(t, ok)

		v, err := m.Get(ctx, "p_a")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), v)
	})

	t.Run("keys by prefix ascending", func(t *testing.T) {
		for _, k := range []string{"p_c", "p_b", "other_x", "p"} {
			_, err := m.SetIfAbsent(ctx, k, []byte(k))
			require.NoError(t, err)
		}
		keys, err := m.Keys(ctx, "p_")
		require.NoError(t, err)
		assert.Equal(t, []string{"p_a", "p_b", "p_c"}, keys)

		all, err := m.Keys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("prefix with like wildcards is literal", func(t *testing.T) {
		_, err := m.SetIfAbsent(ctx, "pXa", []byte("x"))
		require.NoError(t, err)
		keys, err := m.Keys(ctx, "p_")
		require.NoError(t, err)
		assert.NotContains(t, keys, "pXa")
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := m.Delete(ctx, "p_b")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = m.Delete(ctx, "p_b")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = m.Get(ctx, "p_b")
		assert.ErrorIs(t, err, kv.ErrNotFound)

		ok, err = m.SetIfAbsent(ctx, "p_b", []byte("again"))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("version moves on every write and delete", func(t *testing.T) {
		before, err := m.Version(ctx)
		require.NoError(t, err)

		ok, err := m.SetIfAbsent(ctx, "v_a", []byte("x"))
		require.NoError(t, err)
		require.True(t, ok)
		afterSet, err := m.Version(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, before, afterSet)

		ok, err = m.Delete(ctx, "v_a")
		require.NoError(t, err)
		require.True(t, ok)
		afterDelete, err := m.Version(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, afterSet, afterDelete)
	})

	t.Run("concurrent set if absent has one winner", func(t *testing.T) {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ok, err := m.SetIfAbsent(ctx, "race", []byte{byte(i)})
				if err == nil && ok {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
