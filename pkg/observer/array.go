package observer

import (
	"cmp"
	"fmt"
	"slices"
)

// Array is a dynamic ordered container, the Go stand-in for a script array.
//
// Structural changes made through Push, Pop, Shift, Unshift, Splice, Sort
// and Reverse are observable once the array is observed. SetIndex and
// SetLength write the backing storage directly and are never observed;
// use Runtime.Set and Runtime.Del for index writes that must notify.
type Array struct {
	items []any

	// methods is the shared method table the array delegates to.
	methods *arrayMethods

	// own is a per-instance copy of the method table. It takes precedence
	// over methods.
	own *arrayMethods

	raw bool
	ob  *Observer
}

// NewArray creates an array holding a copy of items.
func NewArray(items ...any) *Array {
	return &Array{items: slices.Clone(items)}
}

func (a *Array) dispatch() *arrayMethods {
	if a.own != nil {
		return a.own
	}
	if a.methods != nil {
		return a.methods
	}
	return &nativeArrayMethods
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.items)
}

// At returns the element at i, or nil if i is out of range.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the elements.
func (a *Array) Items() []any {
	return slices.Clone(a.items)
}

// SetIndex writes the element at i, growing the array with nils if needed.
// The write is not observed.
func (a *Array) SetIndex(i int, v any) {
	if i < 0 {
		return
	}
	if i >= len(a.items) {
		a.SetLength(i + 1)
	}
	a.items[i] = v
}

// SetLength truncates or grows the array. New slots are nil.
// The change is not observed.
func (a *Array) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(a.items) {
		clear(a.items[n:])
		a.items = a.items[:n]
		return
	}
	a.items = append(a.items, make([]any, n-len(a.items))...)
}

// Push appends items and returns the new length.
func (a *Array) Push(items ...any) int {
	return a.dispatch().push(a, items...)
}

// Pop removes and returns the last element, or nil if empty.
func (a *Array) Pop() any {
	return a.dispatch().pop(a)
}

// Shift removes and returns the first element, or nil if empty.
func (a *Array) Shift() any {
	return a.dispatch().shift(a)
}

// Unshift inserts items at the front and returns the new length.
func (a *Array) Unshift(items ...any) int {
	return a.dispatch().unshift(a, items...)
}

// Splice removes deleteCount elements starting at start, inserts items in
// their place and returns the removed elements. A negative start counts
// from the end; start and deleteCount are clamped to the array bounds.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	return a.dispatch().splice(a, start, deleteCount, items...)
}

// Sort sorts the array in place with a stable sort and returns it.
// compare returns a negative number when x sorts before y. Nil elements
// always sort last. A nil compare orders elements by their string form.
func (a *Array) Sort(compare func(x, y any) int) *Array {
	a.dispatch().sort(a, compare)
	return a
}

// Reverse reverses the array in place and returns it.
func (a *Array) Reverse() *Array {
	a.dispatch().reverse(a)
	return a
}

// MarkRaw excludes the array from observation.
func (a *Array) MarkRaw() *Array {
	a.raw = true
	return a
}

// IsRaw reports whether the array is excluded from observation.
func (a *Array) IsRaw() bool {
	return a.raw
}

// String renders the array for debugging.
func (a *Array) String() string {
	return fmt.Sprintf("Array(%d)", len(a.items))
}

// arrayMethods is the dispatch table for structural array operations.
type arrayMethods struct {
	push    func(a *Array, items ...any) int
	pop     func(a *Array) any
	shift   func(a *Array) any
	unshift func(a *Array, items ...any) int
	splice  func(a *Array, start, deleteCount int, items ...any) []any
	sort    func(a *Array, compare func(x, y any) int)
	reverse func(a *Array)
}

// nativeArrayMethods performs the mutations without any observation.
var nativeArrayMethods = arrayMethods{
	push: func(a *Array, items ...any) int {
		a.items = append(a.items, items...)
		return len(a.items)
	},
	pop: func(a *Array) any {
		n := len(a.items)
		if n == 0 {
			return nil
		}
		last := a.items[n-1]
		a.items[n-1] = nil
		a.items = a.items[:n-1]
		return last
	},
	shift: func(a *Array) any {
		if len(a.items) == 0 {
			return nil
		}
		first := a.items[0]
		a.items = slices.Delete(a.items, 0, 1)
		return first
	},
	unshift: func(a *Array, items ...any) int {
		a.items = slices.Insert(a.items, 0, items...)
		return len(a.items)
	},
	splice: func(a *Array, start, deleteCount int, items ...any) []any {
		n := len(a.items)
		switch {
		case start < 0:
			start = max(n+start, 0)
		case start > n:
			start = n
		}
		deleteCount = min(max(deleteCount, 0), n-start)
		removed := slices.Clone(a.items[start : start+deleteCount])
		a.items = slices.Replace(a.items, start, start+deleteCount, items...)
		return removed
	},
	sort: func(a *Array, compare func(x, y any) int) {
		if compare == nil {
			compare = compareStrings
		}
		values := make([]any, 0, len(a.items))
		for _, v := range a.items {
			if v != nil {
				values = append(values, v)
			}
		}
		slices.SortStableFunc(values, compare)
		copy(a.items, values)
		clear(a.items[len(values):])
	},
	reverse: func(a *Array) {
		slices.Reverse(a.items)
	},
}

func compareStrings(x, y any) int {
	return cmp.Compare(fmt.Sprint(x), fmt.Sprint(y))
}
