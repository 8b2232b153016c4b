package store

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEngineContract runs the behavior every Engine must share. Each backend
// test feeds its own constructor through here.
func testEngineContract(t *testing.T, newEngine func(t *testing.T) Engine) {
	t.Helper()

	t.Run("operations before open fail", func(t *testing.T) {
		e := newEngine(t)

		require.ErrorIs(t, e.BulkUpdate(nil, nil), ErrEngineNotOpen)
		require.ErrorIs(t, e.DeleteWhere(func(string) bool { return true }), ErrEngineNotOpen)

		_, err := e.LoadWhere(func(string) bool { return true })
		require.ErrorIs(t, err, ErrEngineNotOpen)

		_, err = e.LoadKeys()
		require.ErrorIs(t, err, ErrEngineNotOpen)
	})

	t.Run("bulk update and load", func(t *testing.T) {
		e := openEngine(t, newEngine)

		require.NoError(t, e.BulkUpdate([]Entry{
			{Key: "a", Value: []byte("1")},
			{Key: "b", Value: []byte("2")},
		}, nil))

		// Upsert and delete in one call; deleting an absent key is a no-op.
		require.NoError(t, e.BulkUpdate([]Entry{
			{Key: "c", Value: []byte("3")},
		}, []string{"a", "never-existed"}))

		keys, err := e.LoadKeys()
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"b", "c"}, keys)

		entries, err := e.LoadWhere(func(key string) bool { return key == "c" })
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "c", entries[0].Key)
		assert.Equal(t, []byte("3"), entries[0].Value)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		e := openEngine(t, newEngine)

		require.NoError(t, e.BulkUpdate([]Entry{{Key: "k", Value: []byte("old")}}, nil))
		require.NoError(t, e.BulkUpdate([]Entry{{Key: "k", Value: []byte("new")}}, nil))

		entries, err := e.LoadWhere(func(string) bool { return true })
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []byte("new"), entries[0].Value)
	})

	t.Run("delete where", func(t *testing.T) {
		e := openEngine(t, newEngine)

		require.NoError(t, e.BulkUpdate([]Entry{
			{Key: "feed/1", Value: []byte("1")},
			{Key: "feed/2", Value: []byte("2")},
			{Key: "other/1", Value: []byte("3")},
		}, nil))

		require.NoError(t, e.DeleteWhere(func(key string) bool {
			return strings.HasPrefix(key, "feed/")
		}))

		keys, err := e.LoadKeys()
		require.NoError(t, err)
		assert.Equal(t, []string{"other/1"}, keys)

		// Always-true predicate empties the store.
		require.NoError(t, e.DeleteWhere(func(string) bool { return true }))

		keys, err = e.LoadKeys()
		require.NoError(t, err)
		assert.Empty(t, keys)

		// Deleting from an empty store is fine.
		require.NoError(t, e.DeleteWhere(func(string) bool { return true }))
	})

	t.Run("load where no match", func(t *testing.T) {
		e := openEngine(t, newEngine)

		require.NoError(t, e.BulkUpdate([]Entry{{Key: "k", Value: []byte("v")}}, nil))

		entries, err := e.LoadWhere(func(string) bool { return false })
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("open and close are idempotent", func(t *testing.T) {
		e := openEngine(t, newEngine)

		require.NoError(t, e.Open(), "second Open must be a no-op")
		require.NoError(t, e.Close())
		require.NoError(t, e.Close(), "second Close must be a no-op")
	})
}

func openEngine(t *testing.T, newEngine func(t *testing.T) Engine) Engine {
	t.Helper()

	e := newEngine(t)
	require.NoError(t, e.Open())
	t.Cleanup(func() { _ = e.Close() })

	return e
}
