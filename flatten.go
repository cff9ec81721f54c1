package chessinsight

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultSeparator joins nested keys in flattened rows.
const DefaultSeparator = "."

// flattenPrecision is the number of decimal digits floats are rounded to.
const flattenPrecision = 4

// Flattenable is implemented by values that render as nested maps.
// Nested maps are map[string]any; leaves are strings, numbers, bools or nil.
type Flattenable interface {
	AsMap() map[string]any
}

// Compile-time checks for the entities that flatten.
var (
	_ Flattenable = (*Game)(nil)
	_ Flattenable = (*Player)(nil)
	_ Flattenable = Perspective{}
)

// Flatten renders f as a single-level row. See FlattenMap.
func Flatten(f Flattenable, sep string) map[string]any {
	return FlattenMap(f.AsMap(), sep)
}

// FlattenMap joins nested keys with sep. Floats are rounded to four decimal
// digits and fmt.Stringer values become their string form. An empty nested
// map is kept as an empty map leaf so the structure survives Unflatten.
func FlattenMap(m map[string]any, sep string) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", m, sep)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any, sep string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}

		switch v := v.(type) {
		case map[string]any:
			if len(v) == 0 {
				out[key] = map[string]any{}
				continue
			}
			flattenInto(out, key, v, sep)
		case float64:
			out[key] = roundTo(v, flattenPrecision)
		case float32:
			out[key] = roundTo(float64(v), flattenPrecision)
		case fmt.Stringer:
			out[key] = v.String()
		default:
			out[key] = v
		}
	}
}

// Unflatten rebuilds the nested map FlattenMap produced. It fails when one
// key is a prefix of another, e.g. "a" and "a.b".
func Unflatten(flat map[string]any, sep string) (map[string]any, error) {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, sep)
		node := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := node[part]
			if !ok {
				child := make(map[string]any)
				node[part] = child
				node = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("chessinsight: key %q conflicts with leaf %q", key, part)
			}
			node = child
		}

		leaf := parts[len(parts)-1]
		existing, exists := node[leaf]
		if vm, ok := flat[key].(map[string]any); ok && len(vm) == 0 {
			if !exists {
				node[leaf] = make(map[string]any)
			} else if _, ok := existing.(map[string]any); !ok {
				return nil, fmt.Errorf("chessinsight: key %q set twice", key)
			}
			continue
		}
		if exists {
			return nil, fmt.Errorf("chessinsight: key %q set twice", key)
		}
		node[leaf] = flat[key]
	}
	return root, nil
}
