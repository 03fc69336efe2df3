package observer

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// identical reports whether a and b are the same value: containers by
// pointer, scalars by value, NaN equal to itself, and reference types
// (slices, maps, funcs) by reference.
func identical(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}

// Identical reports whether a write of b over a would be a no-op for a
// reactive property.
func Identical(a, b any) bool {
	return identical(a, b)
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// IsContainer reports whether v is a non-nil *Object or *Array.
func IsContainer(v any) bool {
	switch c := v.(type) {
	case *Object:
		return c != nil
	case *Array:
		return c != nil
	}
	return false
}

// maxArrayIndex is the largest index an array may be grown to hold.
const maxArrayIndex = 1<<32 - 2

// arrayIndex converts key into a valid array index: a non-negative whole
// number no larger than maxArrayIndex. Strings are read as numbers, so
// "01" and "1.0" both name index 1.
func arrayIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return intIndex(int64(k))
	case int8:
		return intIndex(int64(k))
	case int16:
		return intIndex(int64(k))
	case int32:
		return intIndex(int64(k))
	case int64:
		return intIndex(k)
	case uint:
		return uintIndex(uint64(k))
	case uint8:
		return uintIndex(uint64(k))
	case uint16:
		return uintIndex(uint64(k))
	case uint32:
		return uintIndex(uint64(k))
	case uint64:
		return uintIndex(k)
	case float32:
		return floatIndex(float64(k))
	case float64:
		return floatIndex(k)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(k), 64)
		if err != nil {
			return 0, false
		}
		return floatIndex(f)
	case fmt.Stringer:
		return arrayIndex(k.String())
	}
	return 0, false
}

func intIndex(n int64) (int, bool) {
	if n < 0 || n > maxArrayIndex || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func uintIndex(n uint64) (int, bool) {
	if n > maxArrayIndex || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func floatIndex(f float64) (int, bool) {
	if f < 0 || f != math.Floor(f) || math.IsInf(f, 0) || f > maxArrayIndex {
		return 0, false
	}
	return intIndex(int64(f))
}

// propertyKey converts key into an object property name.
func propertyKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(k)
	}
}
