package content

// OperationType discriminates the closed set of mutation operation kinds.
type OperationType int

const (
	// OperationUpsert inserts or replaces a single record.
	OperationUpsert OperationType = iota
	// OperationDelete removes a single record by key.
	OperationDelete
	// OperationDeleteByPrefix removes every record whose key starts with a prefix.
	OperationDeleteByPrefix
	// OperationDeleteAll removes every record.
	OperationDeleteAll
)

// String returns the operation kind as a short lowercase label.
func (t OperationType) String() string {
	switch t {
	case OperationUpsert:
		return "upsert"
	case OperationDelete:
		return "delete"
	case OperationDeleteByPrefix:
		return "delete_by_prefix"
	case OperationDeleteAll:
		return "delete_all"
	default:
		return "unknown"
	}
}

// Operation is a single mutation request. Operations are immutable once
// appended to a Mutation; only the fields relevant to the kind are set.
type Operation struct {
	opType OperationType
	key    string
	value  []byte
	prefix string
}

// Type returns the operation kind.
func (o Operation) Type() OperationType { return o.opType }

// Key returns the target key of an upsert or delete operation.
func (o Operation) Key() string { return o.key }

// Value returns the payload of an upsert operation.
func (o Operation) Value() []byte { return o.value }

// Prefix returns the key prefix of a delete-by-prefix operation.
func (o Operation) Prefix() string { return o.prefix }

// Mutation is an ordered batch of operations submitted through one Commit
// call. Operations are consumed strictly from the front, one at a time, and
// are never reordered or re-inserted.
//
// A Mutation belongs to a single Commit; it must not be reused or modified
// after submission.
type Mutation struct {
	ops []Operation
}

// NewMutation creates an empty mutation batch.
func NewMutation() *Mutation {
	return &Mutation{}
}

// AppendUpsert queues an insert-or-replace of key to value.
// The value bytes are copied so later caller-side changes cannot leak in.
func (m *Mutation) AppendUpsert(key string, value []byte) *Mutation {
	m.ops = append(m.ops, Operation{
		opType: OperationUpsert,
		key:    key,
		value:  append([]byte(nil), value...),
	})

	return m
}

// AppendDelete queues the removal of a single key.
// Deleting an absent key succeeds.
func (m *Mutation) AppendDelete(key string) *Mutation {
	m.ops = append(m.ops, Operation{
		opType: OperationDelete,
		key:    key,
	})

	return m
}

// AppendDeleteByPrefix queues the removal of every key starting with prefix.
func (m *Mutation) AppendDeleteByPrefix(prefix string) *Mutation {
	m.ops = append(m.ops, Operation{
		opType: OperationDeleteByPrefix,
		prefix: prefix,
	})

	return m
}

// AppendDeleteAll queues the removal of every record.
func (m *Mutation) AppendDeleteAll() *Mutation {
	m.ops = append(m.ops, Operation{
		opType: OperationDeleteAll,
	})

	return m
}

// Empty reports whether all operations have been consumed (or none were added).
func (m *Mutation) Empty() bool { return len(m.ops) == 0 }

// Size returns the number of operations remaining.
func (m *Mutation) Size() int { return len(m.ops) }

// TakeFirst removes and returns the front operation.
// It must not be called on an empty mutation.
func (m *Mutation) TakeFirst() Operation {
	op := m.ops[0]
	m.ops = m.ops[1:]

	return op
}
