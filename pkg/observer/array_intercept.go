package observer

// interceptedArrayMethods runs the native mutation, observes any inserted
// elements and notifies the array's container Dep. It is filled in init to
// break the initialization cycle through augmentArray.
var interceptedArrayMethods arrayMethods

func init() {
	interceptedArrayMethods = arrayMethods{
		push: func(a *Array, items ...any) int {
			n := nativeArrayMethods.push(a, items...)
			a.ob.mutated("push", items)
			return n
		},
		pop: func(a *Array) any {
			v := nativeArrayMethods.pop(a)
			a.ob.mutated("pop", nil)
			return v
		},
		shift: func(a *Array) any {
			v := nativeArrayMethods.shift(a)
			a.ob.mutated("shift", nil)
			return v
		},
		unshift: func(a *Array, items ...any) int {
			n := nativeArrayMethods.unshift(a, items...)
			a.ob.mutated("unshift", items)
			return n
		},
		splice: func(a *Array, start, deleteCount int, items ...any) []any {
			removed := nativeArrayMethods.splice(a, start, deleteCount, items...)
			a.ob.mutated("splice", items)
			return removed
		},
		sort: func(a *Array, compare func(x, y any) int) {
			nativeArrayMethods.sort(a, compare)
			a.ob.mutated("sort", nil)
		},
		reverse: func(a *Array) {
			nativeArrayMethods.reverse(a)
			a.ob.mutated("reverse", nil)
		},
	}
}

// augmentArray routes a's structural methods through the intercepted table.
func (rt *Runtime) augmentArray(a *Array) {
	if rt.augment == AugmentCopy {
		own := interceptedArrayMethods
		a.own = &own
		return
	}
	a.methods = &interceptedArrayMethods
}

// mutated is called after an intercepted array method ran.
func (ob *Observer) mutated(method string, inserted []any) {
	if len(inserted) > 0 {
		ob.ObserveArray(inserted)
	}
	ob.rt.hooks.ArrayMutated(method)
	ob.dep.Notify()
}
