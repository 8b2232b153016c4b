package content

import "strings"

// KeyInSet returns a predicate that is true for exactly the given keys.
// The slice is copied into a set once; membership checks are O(1).
func KeyInSet(keys []string) func(key string) bool {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}

	return func(key string) bool {
		_, ok := set[key]

		return ok
	}
}

// KeyHasPrefix returns a predicate that is true for keys whose leading bytes
// equal prefix exactly (case-sensitive). The empty prefix matches every key.
//
// The read path and the delete-by-prefix operation share this predicate, so
// what can be loaded by prefix is always exactly what a prefix delete removes.
func KeyHasPrefix(prefix string) func(key string) bool {
	return func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}
}
