package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKeyInSet verifies set membership semantics, including the empty set.
func TestKeyInSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []string
		key  string
		want bool
	}{
		{"member", []string{"a", "b"}, "a", true},
		{"non-member", []string{"a", "b"}, "c", false},
		{"empty set matches nothing", nil, "a", false},
		{"case sensitive", []string{"Key"}, "key", false},
		{"empty key member", []string{""}, "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, KeyInSet(tt.keys)(tt.key))
		})
	}
}

// TestKeyHasPrefix verifies byte-wise prefix matching, including the
// match-everything empty prefix.
func TestKeyHasPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   bool
	}{
		{"match", "feed/", "feed/1", true},
		{"exact equality", "feed/", "feed/", true},
		{"no match", "feed/", "other/1", false},
		{"key shorter than prefix", "feed/", "fee", false},
		{"empty prefix matches all", "", "anything", true},
		{"empty prefix matches empty key", "", "", true},
		{"case sensitive", "Feed/", "feed/1", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, KeyHasPrefix(tt.prefix)(tt.key))
		})
	}
}

// TestFilters_ReadAndDeleteAgree verifies the shared-predicate guarantee:
// what a prefix load matches is exactly what a prefix delete removes.
func TestFilters_ReadAndDeleteAgree(t *testing.T) {
	t.Parallel()

	keys := []string{"feed/1", "feed/2", "feedless", "other/1"}
	pred := KeyHasPrefix("feed/")

	var matched []string
	for _, key := range keys {
		if pred(key) {
			matched = append(matched, key)
		}
	}

	assert.Equal(t, []string{"feed/1", "feed/2"}, matched)
}
