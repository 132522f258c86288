package cache

import (
	"fmt"
	"sort"
)

// Identifiable is implemented by any argument that should contribute
// its ID rather than its default string form to a generated cache key
// — the Go analogue of the original key generator's `hasattr(arg,
// 'id')` check.
type Identifiable interface {
	CacheKeyID() string
}

// KeyGenerator produces a cache key for an operation's arguments. A
// QueryCache falls back to GenerateDefaultKey when no generator is
// registered for an operation.
type KeyGenerator func(args []interface{}, kwargs map[string]interface{}) string

func identifyOrString(value interface{}) string {
	if id, ok := value.(Identifiable); ok {
		return id.CacheKeyID()
	}
	return fmt.Sprintf("%v", value)
}

// GenerateDefaultKey builds "operation:arg1:arg2:k1:v1:k2:v2" with
// kwargs sorted by key for stability, grounded on
// QueryCache._generate_cache_key's default branch.
func GenerateDefaultKey(operation string, args []interface{}, kwargs map[string]interface{}) string {
	parts := make([]string, 0, 1+len(args)+len(kwargs))
	parts = append(parts, operation)

	for _, arg := range args {
		parts = append(parts, identifyOrString(arg))
	}

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, identifyOrString(kwargs[k])))
	}

	key := parts[0]
	for _, p := range parts[1:] {
		key += ":" + p
	}
	return key
}
