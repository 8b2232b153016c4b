package store

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPebbleEngine(t *testing.T) Engine {
	t.Helper()

	return NewPebbleEngine(Config{Path: t.TempDir()})
}

// TestPebbleEngine_Contract runs the shared engine behavior suite.
func TestPebbleEngine_Contract(t *testing.T) {
	t.Parallel()

	testEngineContract(t, newTestPebbleEngine)
}

// TestPebbleEngine_HonorsWriteBufferSize verifies that the engine opens and
// serves writes with the configured memtable size instead of pebble's default.
func TestPebbleEngine_HonorsWriteBufferSize(t *testing.T) {
	t.Parallel()

	e := NewPebbleEngine(Config{Path: t.TempDir(), WriteBufferSize: LowEndWriteBufferSize})
	require.NoError(t, e.Open())
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.BulkUpdate([]Entry{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	}, nil))

	keys, err := e.LoadKeys()
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}

// TestPebbleEngine_PersistsAcrossReopen verifies that committed records
// survive closing and reopening the database directory.
func TestPebbleEngine_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first := NewPebbleEngine(Config{Path: dir})
	require.NoError(t, first.Open())

	require.NoError(t, first.BulkUpdate([]Entry{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	}, nil))
	require.NoError(t, first.Close())

	second := NewPebbleEngine(Config{Path: dir})
	require.NoError(t, second.Open())
	t.Cleanup(func() { _ = second.Close() })

	keys, err := second.LoadKeys()
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}
