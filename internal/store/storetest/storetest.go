// Package storetest is a conformance suite shared by the store.KV backends.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/askboard/internal/store"
)

// Run exercises every KV capability against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.KV) {
	t.Run("Incr", func(t *testing.T) {
		kv := newStore(t)
		ctx := context.Background()

		for want := int64(1); want <= 3; want++ {
			got, err := kv.Incr(ctx, "post:id")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		other, err := kv.Incr(ctx, "other:id")
		require.NoError(t, err)
		assert.Equal(t, int64(1), other)
	})

	t.Run("HashMergeAndMissing", func(t *testing.T) {
		kv := newStore(t)
		ctx := context.Background()

		missing, err := kv.HGetAll(ctx, "post:404")
		require.NoError(t, err)
		assert.Empty(t, missing)

		require.NoError(t, kv.HSet(ctx, "post:1", map[string]string{"title": "a", "content": "b"}))
		require.NoError(t, kv.HSet(ctx, "post:1", map[string]string{"title": "c"}))

		got, err := kv.HGetAll(ctx, "post:1")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"title": "c", "content": "b"}, got)
	})

	t.Run("PushPrependsInOrder", func(t *testing.T) {
		kv := newStore(t)
		ctx := context.Background()

		require.NoError(t, kv.LPush(ctx, "l", "a"))
		require.NoError(t, kv.LPush(ctx, "l", "b"))
		require.NoError(t, kv.LPush(ctx, "l", "c", "d"))

		got, err := kv.LRange(ctx, "l", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "c", "b", "a"}, got)

		got, err = kv.LRange(ctx, "l", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b"}, got)

		got, err = kv.LRange(ctx, "l", -2, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, got)

		got, err = kv.LRange(ctx, "l", 10, 20)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = kv.LRange(ctx, "missing", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("TrimKeepsHead", func(t *testing.T) {
		kv := newStore(t)
		ctx := context.Background()

		for _, v := range []string{"1", "2", "3", "4", "5"} {
			require.NoError(t, kv.LPush(ctx, "posts", v))
		}
		require.NoError(t, kv.LTrim(ctx, "posts", 0, 2))

		got, err := kv.LRange(ctx, "posts", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"5", "4", "3"}, got)

		// pushes after a trim still land at the head
		require.NoError(t, kv.LPush(ctx, "posts", "6"))
		got, err = kv.LRange(ctx, "posts", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"6", "5", "4", "3"}, got)
	})

	t.Run("Del", func(t *testing.T) {
		kv := newStore(t)
		ctx := context.Background()

		require.NoError(t, kv.HSet(ctx, "post:1", map[string]string{"title": "x"}))
		require.NoError(t, kv.LPush(ctx, "post:1:msgs", "m"))
		require.NoError(t, kv.Del(ctx, "post:1", "post:1:msgs", "never-existed"))

		h, err := kv.HGetAll(ctx, "post:1")
		require.NoError(t, err)
		assert.Empty(t, h)

		l, err := kv.LRange(ctx, "post:1:msgs", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, l)
	})

	t.Run("RenameNX", func(t *testing.T) {
		kv := newStore(t)
		ctx := context.Background()

		require.NoError(t, kv.LPush(ctx, "post:1:messages", "a", "b"))

		moved, err := kv.RenameNX(ctx, "post:1:messages", "post:1:msgs")
		require.NoError(t, err)
		assert.True(t, moved)

		got, err := kv.LRange(ctx, "post:1:msgs", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, got)
		got, err = kv.LRange(ctx, "post:1:messages", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, got)

		// source already gone
		moved, err = kv.RenameNX(ctx, "post:1:messages", "post:1:msgs")
		require.NoError(t, err)
		assert.False(t, moved)

		// destination exists: both lists stay as they are
		require.NoError(t, kv.LPush(ctx, "post:2:messages", "old"))
		require.NoError(t, kv.LPush(ctx, "post:2:msgs", "new"))
		moved, err = kv.RenameNX(ctx, "post:2:messages", "post:2:msgs")
		require.NoError(t, err)
		assert.False(t, moved)

		got, err = kv.LRange(ctx, "post:2:msgs", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, got)
		got, err = kv.LRange(ctx, "post:2:messages", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"old"}, got)
	})

	t.Run("Ping", func(t *testing.T) {
		kv := newStore(t)
		assert.NoError(t, kv.Ping(context.Background()))
	})
}
