package document

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/vango-dev/reactive/pkg/observer"
)

// FromNative converts Go maps and slices into containers. Map keys are
// sorted. Values that are already containers are returned unchanged.
func FromNative(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := observer.NewObject()
		for _, k := range keys {
			_ = obj.Set(k, FromNative(t[k]))
		}
		return obj
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return FromNative(m)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = FromNative(item)
		}
		return observer.NewArray(items...)
	case []map[string]any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = FromNative(item)
		}
		return observer.NewArray(items...)
	}
	return normalizeScalar(v)
}

// ToNative converts containers back into map[string]any and []any. It
// reads values with Get, so inside a collection window the caller
// subscribes to everything it converts. Cyclic trees are an error.
func ToNative(v any) (any, error) {
	return toNative(v, make(map[any]bool))
}

func toNative(v any, active map[any]bool) (any, error) {
	if !observer.IsContainer(v) {
		return v, nil
	}
	if active[v] {
		return nil, fmt.Errorf("document: cycle through %v", v)
	}
	active[v] = true
	defer delete(active, v)

	switch c := v.(type) {
	case *observer.Object:
		out := make(map[string]any, c.Len())
		for _, k := range c.Keys() {
			val, err := toNative(c.Get(k), active)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	case *observer.Array:
		out := make([]any, c.Len())
		for i := range out {
			val, err := toNative(c.At(i), active)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	}
	return v, nil
}

// normalizeScalar maps every integer type to int64 and every float type to
// float64.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n)
		}
		return float64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}
