package runtime

import "strings"

// Array is an awk associative array: a string-keyed map of Values. Multi-
// dimensional indices are joined by a configurable subscript separator
// before lookup (spec §4.7).
type Array struct {
	m map[string]Value
}

// NewArray returns an empty array.
func NewArray() *Array {
	return &Array{m: make(map[string]Value)}
}

// JoinKey concatenates index components with subsep into the single
// string key the map is actually keyed by (spec §3 "Associative array").
func JoinKey(parts []string, subsep string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts, subsep)
}

// Get returns the value at key, auto-vivifying an empty StrNum entry if
// absent — matching awk's rule that a bare read of a[k] creates k,
// observable via a subsequent `k in a` (spec §4.7).
func (a *Array) Get(key string) Value {
	if v, ok := a.m[key]; ok {
		return v
	}
	a.m[key] = Uninitialized
	return Uninitialized
}

// Set writes key→v without the auto-vivification side effect of Get.
func (a *Array) Set(key string, v Value) {
	a.m[key] = v
}

// Has reports membership without vivifying key (the `in` operator must
// not create the key it tests, spec §4.7).
func (a *Array) Has(key string) bool {
	_, ok := a.m[key]
	return ok
}

// Delete removes a single key. A no-op if key is absent.
func (a *Array) Delete(key string) {
	delete(a.m, key)
}

// Clear empties the array in place (used by `delete arr` and by `split`
// re-populating its destination array, spec §4.7).
func (a *Array) Clear() {
	a.m = make(map[string]Value)
}

// Len reports the number of keys.
func (a *Array) Len() int {
	return len(a.m)
}

// Keys returns the array's keys in unspecified order, for `for (k in a)`.
// The iteration order is not guaranteed stable across runs (awk itself
// makes no ordering promise here).
func (a *Array) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	return keys
}
