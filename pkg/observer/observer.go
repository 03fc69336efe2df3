package observer

// Observer is attached to each observed container. It converts the
// container's properties (or elements) into reactive ones and owns the
// container-level Dep, which represents "this container's shape changed".
type Observer struct {
	value   any
	dep     *Dep
	vmCount int
	rt      *Runtime
}

// Value returns the observed *Object or *Array.
func (ob *Observer) Value() any {
	return ob.value
}

// Dep returns the container-level Dep.
func (ob *Observer) Dep() *Dep {
	return ob.dep
}

// VMCount returns how many live roots use the container as their state.
func (ob *Observer) VMCount() int {
	return ob.vmCount
}

// Runtime returns the runtime that created the observer.
func (ob *Observer) Runtime() *Runtime {
	return ob.rt
}

func (rt *Runtime) newObserver(value any) *Observer {
	ob := &Observer{value: value, dep: rt.NewDep(), rt: rt}
	switch v := value.(type) {
	case *Array:
		// The back-reference is set before walking so that cycles resolve
		// to this observer instead of recursing.
		v.ob = ob
		rt.augmentArray(v)
		rt.hooks.ObserverCreated("array")
		ob.ObserveArray(v.items)
	case *Object:
		v.ob = ob
		rt.hooks.ObserverCreated("object")
		ob.walk(v)
	}
	return ob
}

// walk makes every own enumerable property of o reactive.
func (ob *Observer) walk(o *Object) {
	for _, key := range o.Keys() {
		// Redefining an existing configurable key cannot fail, and
		// non-configurable keys are skipped without error.
		_ = ob.rt.DefineReactive(o, key)
	}
}

// ObserveArray observes each element of items.
func (ob *Observer) ObserveArray(items []any) {
	for i, n := 0, len(items); i < n; i++ {
		ob.rt.Observe(items[i])
	}
}

// ObserverOf returns the Observer attached to value, or nil.
func ObserverOf(value any) *Observer {
	switch v := value.(type) {
	case *Object:
		if v != nil {
			return v.ob
		}
	case *Array:
		if v != nil {
			return v.ob
		}
	}
	return nil
}

// Observe returns the Observer of value, creating one if value is an
// observable container that has none yet. It returns nil for primitives,
// raw containers, framework instances, non-extensible objects, and for any
// new container while observation is switched off or the runtime is in
// server-rendering mode.
func (rt *Runtime) Observe(value any) *Observer {
	switch v := value.(type) {
	case *Object:
		if v == nil || v.raw {
			return nil
		}
		if v.ob != nil {
			return v.ob
		}
		if !rt.canObserve() || v.nonExtensible || v.instance {
			return nil
		}
		return rt.newObserver(v)
	case *Array:
		if v == nil || v.raw {
			return nil
		}
		if v.ob != nil {
			return v.ob
		}
		if !rt.canObserve() {
			return nil
		}
		return rt.newObserver(v)
	}
	return nil
}

// ObserveRoot observes value as the root state of one live instance,
// incrementing its root count. Root containers refuse late property
// additions and removals through Set and Del.
func (rt *Runtime) ObserveRoot(value any) *Observer {
	ob := rt.Observe(value)
	if ob != nil {
		ob.vmCount++
	}
	return ob
}

// ReleaseRoot undoes one ObserveRoot when an instance is torn down.
func (rt *Runtime) ReleaseRoot(value any) {
	if ob := ObserverOf(value); ob != nil && ob.vmCount > 0 {
		ob.vmCount--
	}
}
