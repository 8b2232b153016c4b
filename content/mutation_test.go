package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMutation_AppendAndTakeFirst verifies front-only consumption in
// submission order across all four operation kinds.
func TestMutation_AppendAndTakeFirst(t *testing.T) {
	t.Parallel()

	m := NewMutation().
		AppendUpsert("k", []byte("v")).
		AppendDelete("d").
		AppendDeleteByPrefix("p/").
		AppendDeleteAll()

	require.Equal(t, 4, m.Size())
	require.False(t, m.Empty())

	op := m.TakeFirst()
	assert.Equal(t, OperationUpsert, op.Type())
	assert.Equal(t, "k", op.Key())
	assert.Equal(t, []byte("v"), op.Value())

	op = m.TakeFirst()
	assert.Equal(t, OperationDelete, op.Type())
	assert.Equal(t, "d", op.Key())

	op = m.TakeFirst()
	assert.Equal(t, OperationDeleteByPrefix, op.Type())
	assert.Equal(t, "p/", op.Prefix())

	op = m.TakeFirst()
	assert.Equal(t, OperationDeleteAll, op.Type())

	assert.True(t, m.Empty())
	assert.Zero(t, m.Size())
}

// TestMutation_UpsertCopiesValue verifies that mutating the caller's slice
// after AppendUpsert does not change the queued operation.
func TestMutation_UpsertCopiesValue(t *testing.T) {
	t.Parallel()

	payload := []byte("original")
	m := NewMutation().AppendUpsert("k", payload)

	payload[0] = 'X'

	op := m.TakeFirst()
	assert.Equal(t, []byte("original"), op.Value())
}

// TestMutation_NewIsEmpty verifies the zero state of a fresh mutation.
func TestMutation_NewIsEmpty(t *testing.T) {
	t.Parallel()

	m := NewMutation()
	assert.True(t, m.Empty())
	assert.Zero(t, m.Size())
}

// TestOperationType_String covers the log labels, including the fallback for
// values outside the known set.
func TestOperationType_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opType OperationType
		want   string
	}{
		{OperationUpsert, "upsert"},
		{OperationDelete, "delete"},
		{OperationDeleteByPrefix, "delete_by_prefix"},
		{OperationDeleteAll, "delete_all"},
		{OperationType(42), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.opType.String())
	}
}
